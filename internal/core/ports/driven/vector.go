package driven

import "context"

// VectorMetadata travels alongside every chunk vector. It carries enough
// document-level context to rebuild a query source without an extra
// catalog lookup. The JSON tags are the wire names the index stores.
type VectorMetadata struct {
	// DocumentID is the parent document identifier.
	DocumentID string `json:"id"`

	// Title is the parent document title.
	Title string `json:"title"`

	// Source is the parent document source label.
	Source string `json:"source"`

	// Timestamp is the document creation time in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`

	// ChunkIndex is the chunk's zero-based position.
	ChunkIndex int `json:"chunkIndex"`

	// TotalChunks is the document's total chunk count, known only after
	// chunking completes and identical on every chunk of a document.
	TotalChunks int `json:"totalChunks"`
}

// VectorRecord is one embedding plus its metadata, created during
// ingestion and immutable until the parent document is deleted.
type VectorRecord struct {
	// ID is "{documentID}_{chunkIndex}".
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Metadata is the per-chunk metadata.
	Metadata VectorMetadata
}

// QueryOptions configures a nearest-neighbour query.
type QueryOptions struct {
	// TopK is the maximum number of matches to return.
	TopK int

	// DocumentID, when non-empty, restricts matches to one document.
	DocumentID string
}

// VectorMatch is a single nearest-neighbour hit.
type VectorMatch struct {
	// ID is the matched record identifier.
	ID string

	// Score is the similarity reported by the index, descending relevance.
	Score float64

	// Metadata is the stored per-chunk metadata.
	Metadata VectorMetadata
}

// VectorIndex stores chunk embeddings with metadata and answers
// nearest-neighbour queries. Ranking is whatever the index returns;
// callers do not re-sort.
type VectorIndex interface {
	// Upsert inserts or replaces the given records.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Query returns the nearest records to the given vector.
	Query(ctx context.Context, vector []float32, opts QueryOptions) ([]VectorMatch, error)

	// ListIDs pages through the record IDs belonging to one document.
	// offset is an opaque cursor; pass "" for the first page. A returned
	// nextOffset of "" means the listing is exhausted.
	ListIDs(ctx context.Context, documentID string, limit int, offset string) (ids []string, nextOffset string, err error)

	// DeleteByIDs removes records by identifier. Unknown IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}
