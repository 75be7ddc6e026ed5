package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrBlobStoreUnavailable indicates the blob store is not configured.
	ErrBlobStoreUnavailable = errors.New("blob store unavailable")

	// ErrCatalogUnavailable indicates the document catalog store is not configured.
	ErrCatalogUnavailable = errors.New("document store unavailable")

	// ErrPartialIngest indicates ingestion failed after some chunk writes
	// already happened. Cleanup is best-effort; operators may need to
	// reconcile leftover blobs or vectors.
	ErrPartialIngest = errors.New("partial ingest")

	// ErrPartialDelete indicates deletion removed some but not all of a
	// document's blobs and vectors. There is no cross-store transaction,
	// so a failed half leaves orphans behind.
	ErrPartialDelete = errors.New("partial delete")
)
