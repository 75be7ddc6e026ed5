// Package memory provides a deterministic in-process embedding service
// for development mode and tests. Vectors are derived from a hash of
// the input, so equal texts always embed to equal vectors.
package memory

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size used when none is given.
const DefaultDimensions = 64

// EmbeddingService produces deterministic pseudo-embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a deterministic embedding service with
// the given vector size. Non-positive falls back to DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed derives a unit vector from an FNV hash of the text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, s.dimensions)
	var norm float64
	for i := range vec {
		// xorshift64 keeps the sequence deterministic per seed.
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float64(int64(seed)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns a fixed identifier.
func (s *EmbeddingService) ModelName() string {
	return "memory-hash"
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
