package driven

import (
	"context"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
)

// DocumentStore persists document-level metadata, written once at
// ingestion time and read directly at listing time. Backed by SQLite.
//
// The blob store and vector index remain the source of truth for
// content; this catalog only spares listing from reconstructing
// metadata out of chunk vectors.
type DocumentStore interface {
	// SaveDocument stores a catalog row for a freshly ingested document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when no row exists.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all known documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document's row. Removing a missing row
	// is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
