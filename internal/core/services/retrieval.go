package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driving"
	"github.com/lifeodyssey/recruitreply/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// ContentNotFound stands in for a chunk whose blob has gone missing.
// A missing chunk degrades the context; it does not fail the query.
const ContentNotFound = "[content not found]"

// RetrievalService answers queries by retrieving the nearest chunks and
// feeding them to the generation model. It only reads; ingestion owns
// all writes.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	vectors   driven.VectorIndex
	blobs     driven.BlobStore
	generator driven.GenerationService
	topK      int
}

// RetrievalOption configures the retrieval service.
type RetrievalOption func(*RetrievalService)

// WithTopK sets the number of chunks retrieved per query.
func WithTopK(k int) RetrievalOption {
	return func(svc *RetrievalService) {
		if k > 0 {
			svc.topK = k
		}
	}
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	vectors driven.VectorIndex,
	blobs driven.BlobStore,
	generator driven.GenerationService,
	opts ...RetrievalOption,
) *RetrievalService {
	svc := &RetrievalService{
		embedder:  embedder,
		vectors:   vectors,
		blobs:     blobs,
		generator: generator,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Retrieve embeds the query, searches the vector index, assembles the
// retrieved chunk texts into a context, and asks the generation model
// for an answer grounded in that context. Match order is whatever the
// index returned; no re-sorting happens here.
func (s *RetrievalService) Retrieve(ctx context.Context, query, conversationID string) (*domain.Answer, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.blobs == nil {
		return nil, domain.ErrBlobStoreUnavailable
	}
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	logger.Debug("Retrieve: query %q (conversation %q)", query, conversationID)

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.vectors.Query(ctx, embedding, driven.QueryOptions{TopK: s.topK})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Retrieve: %d matches", len(matches))

	sources := make([]domain.Source, 0, len(matches))
	contextParts := make([]string, 0, len(matches))
	for _, match := range matches {
		content := s.fetchChunk(ctx, match.Metadata)
		contextParts = append(contextParts, content)
		sources = append(sources, domain.Source{
			ID:         match.Metadata.DocumentID,
			Title:      match.Metadata.Title,
			Source:     match.Metadata.Source,
			Content:    content,
			Similarity: match.Score,
		})
	}

	prompt := buildPrompt(strings.Join(contextParts, "\n\n"), query)

	answer, err := s.generator.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{Text: answer, Sources: sources}, nil
}

// fetchChunk loads a matched chunk's text from the blob store. A
// missing blob yields the sentinel instead of an error; any other blob
// failure also degrades to the sentinel so one bad read cannot sink
// the whole query.
func (s *RetrievalService) fetchChunk(ctx context.Context, meta driven.VectorMetadata) string {
	key := domain.ChunkKey(meta.DocumentID, meta.ChunkIndex)
	content, err := s.blobs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Retrieve: fetch chunk %s: %v", key, err)
		}
		return ContentNotFound
	}
	return string(content)
}

// buildPrompt embeds the retrieved context and the verbatim question.
// The instructions keep the model inside the context: when the answer
// is not there it must say so rather than fabricate.
func buildPrompt(contextText, query string) string {
	var b strings.Builder
	b.WriteString("You are a recruitment assistant. Answer the question using only the context below.\n")
	b.WriteString("If the context does not contain the answer, say you do not have that information. Do not make anything up.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
