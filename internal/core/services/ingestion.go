package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lifeodyssey/recruitreply/internal/chunker"
	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driving"
	"github.com/lifeodyssey/recruitreply/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultIngestWorkers bounds the per-chunk fan-out.
const DefaultIngestWorkers = 4

// IngestionService chunks, embeds, and stores uploaded documents.
// It is the only component that creates documents, chunks, and vector
// records.
type IngestionService struct {
	blobs    driven.BlobStore
	vectors  driven.VectorIndex
	embedder driven.EmbeddingService
	docs     driven.DocumentStore
	splitter *chunker.Splitter
	workers  int
}

// IngestionOption configures the ingestion service.
type IngestionOption func(*IngestionService)

// WithSplitter overrides the default chunker configuration.
func WithSplitter(s *chunker.Splitter) IngestionOption {
	return func(svc *IngestionService) {
		if s != nil {
			svc.splitter = s
		}
	}
}

// WithWorkers bounds the concurrent per-chunk fan-out.
func WithWorkers(n int) IngestionOption {
	return func(svc *IngestionService) {
		if n > 0 {
			svc.workers = n
		}
	}
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	blobs driven.BlobStore,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
	docs driven.DocumentStore,
	opts ...IngestionOption,
) *IngestionService {
	svc := &IngestionService{
		blobs:    blobs,
		vectors:  vectors,
		embedder: embedder,
		docs:     docs,
		splitter: chunker.New(),
		workers:  DefaultIngestWorkers,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ingest processes one uploaded document: it mints a fresh identifier,
// persists the original text, then fans out per chunk to store the
// chunk blob, embed it, and upsert its vector record. The catalog row
// is written last, once every chunk landed.
//
// Chunk processing runs concurrently; chunks are independent units and
// the total chunk count is known before any upsert begins. On failure
// the already-written blobs and vectors for the fresh identifier are
// cleaned up best-effort before the error is surfaced.
func (s *IngestionService) Ingest(ctx context.Context, content, title, source string) (*driving.IngestReceipt, error) {
	if s.blobs == nil {
		return nil, domain.ErrBlobStoreUnavailable
	}
	if s.vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.docs == nil {
		return nil, domain.ErrCatalogUnavailable
	}

	documentID := uuid.New().String()
	timestamp := time.Now().UnixMilli()

	logger.Debug("Ingest: document %s, title %q, %d bytes", documentID, title, len(content))

	if err := s.blobs.Put(ctx, domain.OriginalKey(documentID), []byte(content)); err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	pieces := s.splitter.Split(content)
	total := len(pieces)

	if total == 0 {
		// An empty upload stores only the original blob. Without chunks
		// there is nothing to embed and no catalog row, so the document
		// never appears in listings.
		logger.Warn("Ingest: document %s has empty content, nothing indexed", documentID)
		return &driving.IngestReceipt{DocumentID: documentID, ChunkCount: 0}, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, piece := range pieces {
		chunk := domain.Chunk{DocumentID: documentID, Index: i, Text: piece}
		group.Go(func() error {
			return s.ingestChunk(groupCtx, chunk, title, source, timestamp, total)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Warn("Ingest: document %s failed mid-flight, cleaning up written chunks: %v", documentID, err)
		s.cleanup(ctx, documentID, total)
		return nil, fmt.Errorf("%w: document %s: %v", domain.ErrPartialIngest, documentID, err)
	}

	doc := &domain.Document{
		ID:         documentID,
		Title:      title,
		Source:     source,
		Timestamp:  timestamp,
		ChunkCount: total,
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Ingest: catalog write for document %s failed, cleaning up: %v", documentID, err)
		s.cleanup(ctx, documentID, total)
		return nil, fmt.Errorf("save catalog entry: %w", err)
	}

	logger.Info("Ingest: document %s stored with %d chunks", documentID, total)
	return &driving.IngestReceipt{DocumentID: documentID, ChunkCount: total}, nil
}

// ingestChunk stores one chunk blob, embeds the text, and upserts the
// vector record carrying the full document metadata.
func (s *IngestionService) ingestChunk(ctx context.Context, chunk domain.Chunk, title, source string, timestamp int64, total int) error {
	if err := s.blobs.Put(ctx, chunk.BlobKey(), []byte(chunk.Text)); err != nil {
		return fmt.Errorf("store chunk %d: %w", chunk.Index, err)
	}

	vector, err := s.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
	}

	record := driven.VectorRecord{
		ID:     chunk.VectorID(),
		Vector: vector,
		Metadata: driven.VectorMetadata{
			DocumentID:  chunk.DocumentID,
			Title:       title,
			Source:      source,
			Timestamp:   timestamp,
			ChunkIndex:  chunk.Index,
			TotalChunks: total,
		},
	}
	if err := s.vectors.Upsert(ctx, []driven.VectorRecord{record}); err != nil {
		return fmt.Errorf("upsert vector %d: %w", chunk.Index, err)
	}

	return nil
}

// cleanup removes everything a failed ingestion may have written.
// Errors are logged, not returned; the original failure is what the
// caller needs to see.
func (s *IngestionService) cleanup(ctx context.Context, documentID string, total int) {
	if err := s.blobs.Delete(ctx, domain.OriginalKey(documentID)); err != nil {
		logger.Warn("Ingest cleanup: delete original for %s: %v", documentID, err)
	}

	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		if err := s.blobs.Delete(ctx, domain.ChunkKey(documentID, i)); err != nil {
			logger.Warn("Ingest cleanup: delete chunk %d for %s: %v", i, documentID, err)
		}
		ids = append(ids, domain.VectorID(documentID, i))
	}

	if err := s.vectors.DeleteByIDs(ctx, ids); err != nil {
		logger.Warn("Ingest cleanup: delete vectors for %s: %v", documentID, err)
	}
}
