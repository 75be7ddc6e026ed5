// Package ratelimit wraps an embedding service with a client-side
// request rate limit, so bulk ingestion does not trip provider quotas.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService delegates to an inner embedding service, waiting on
// a token-bucket limiter before each request.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap returns a rate-limited view of inner allowing requestsPerSecond
// requests per second with a burst of one. A non-positive rate returns
// inner unchanged.
func Wrap(inner driven.EmbeddingService, requestsPerSecond float64) driven.EmbeddingService {
	if requestsPerSecond <= 0 {
		return inner
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Embed waits for the limiter, then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for the limiter once per batch, then delegates. A
// batch is a single upstream request regardless of its size.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the inner service's embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates directly; health checks are not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the inner service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
