package driving

import (
	"context"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
)

// IngestReceipt reports the outcome of a successful ingestion.
type IngestReceipt struct {
	// DocumentID is the freshly minted identifier.
	DocumentID string

	// ChunkCount is the number of chunks stored and embedded.
	// Zero means the content was empty; nothing was indexed.
	ChunkCount int
}

// IngestionService chunks, embeds, and stores an uploaded document.
type IngestionService interface {
	// Ingest processes one document. The content may be empty; that
	// produces a receipt with ChunkCount 0 and no catalog entry.
	Ingest(ctx context.Context, content, title, source string) (*IngestReceipt, error)
}

// RetrievalService answers natural-language queries from indexed chunks.
type RetrievalService interface {
	// Retrieve embeds the query, finds the nearest chunks, and
	// generates an answer grounded in their text. conversationID is
	// carried through for log correlation only.
	Retrieve(ctx context.Context, query, conversationID string) (*domain.Answer, error)
}

// DeleteReceipt reports what a deletion removed.
type DeleteReceipt struct {
	// DocumentID is the deleted document.
	DocumentID string

	// BlobsDeleted is the number of blob objects removed.
	BlobsDeleted int

	// VectorsDeleted is the number of vector records removed.
	VectorsDeleted int
}

// OrphanReport lists state the reconcile sweep found dangling on one side.
type OrphanReport struct {
	// OrphanedBlobs maps document IDs that own blobs but have no
	// catalog row to their blob key count.
	OrphanedBlobs map[string]int

	// MissingBlobs lists catalogued document IDs whose blob prefix is
	// empty.
	MissingBlobs []string
}

// CatalogService lists and deletes documents.
type CatalogService interface {
	// List returns all documents known to the catalog.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document's blobs, vectors, and catalog row.
	// Deleting an unknown document is a no-op success.
	Delete(ctx context.Context, documentID string) (*DeleteReceipt, error)

	// Reconcile cross-checks blob prefixes against the catalog and
	// reports orphans. It never deletes anything.
	Reconcile(ctx context.Context) (*OrphanReport, error)
}
