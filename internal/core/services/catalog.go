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

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// DefaultDeletePageSize is how many vector IDs one deletion page fetches.
const DefaultDeletePageSize = 100

// CatalogService lists and deletes documents. Listing reads the
// catalog store directly; deletion sweeps the blob store and the
// vector index, which have no shared transaction, so a half-failed
// delete can leave orphans on one side.
type CatalogService struct {
	docs     driven.DocumentStore
	blobs    driven.BlobStore
	vectors  driven.VectorIndex
	pageSize int
}

// CatalogOption configures the catalog service.
type CatalogOption func(*CatalogService)

// WithDeletePageSize sets the vector deletion page size.
func WithDeletePageSize(n int) CatalogOption {
	return func(svc *CatalogService) {
		if n > 0 {
			svc.pageSize = n
		}
	}
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	docs driven.DocumentStore,
	blobs driven.BlobStore,
	vectors driven.VectorIndex,
	opts ...CatalogOption,
) *CatalogService {
	svc := &CatalogService{
		docs:     docs,
		blobs:    blobs,
		vectors:  vectors,
		pageSize: DefaultDeletePageSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// List returns all catalogued documents. Documents ingested with empty
// content never received a catalog row, so they do not appear here.
func (s *CatalogService) List(ctx context.Context) ([]domain.Document, error) {
	if s.docs == nil {
		return nil, domain.ErrCatalogUnavailable
	}

	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes every blob under the document's prefix, every vector
// record carrying its identifier, and the catalog row. The vector
// sweep pages through the index until a short page, so documents with
// more than one page of chunks are still removed completely. Deleting
// an already-deleted document finds nothing on any side and succeeds.
func (s *CatalogService) Delete(ctx context.Context, documentID string) (*driving.DeleteReceipt, error) {
	if s.docs == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	if s.blobs == nil {
		return nil, domain.ErrBlobStoreUnavailable
	}
	if s.vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	logger.Debug("Delete: document %s", documentID)

	var errs []error

	blobsDeleted, err := s.deleteBlobs(ctx, documentID)
	if err != nil {
		errs = append(errs, fmt.Errorf("blob sweep: %w", err))
	}

	vectorsDeleted, err := s.deleteVectors(ctx, documentID)
	if err != nil {
		errs = append(errs, fmt.Errorf("vector sweep: %w", err))
	}

	if len(errs) == 0 {
		if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
			errs = append(errs, fmt.Errorf("catalog row: %w", err))
		}
	}

	if len(errs) > 0 {
		// One side may have succeeded already. Log distinctly so
		// operators know there may be orphaned state to reconcile.
		logger.Warn("Delete: document %s partially deleted (%d blobs, %d vectors removed): %v",
			documentID, blobsDeleted, vectorsDeleted, errors.Join(errs...))
		return nil, fmt.Errorf("%w: document %s: %v", domain.ErrPartialDelete, documentID, errors.Join(errs...))
	}

	logger.Info("Delete: document %s removed (%d blobs, %d vectors)", documentID, blobsDeleted, vectorsDeleted)
	return &driving.DeleteReceipt{
		DocumentID:     documentID,
		BlobsDeleted:   blobsDeleted,
		VectorsDeleted: vectorsDeleted,
	}, nil
}

// deleteBlobs removes every object under the document's key prefix.
func (s *CatalogService) deleteBlobs(ctx context.Context, documentID string) (int, error) {
	listing, err := s.blobs.List(ctx, driven.ListOptions{Prefix: domain.BlobPrefix(documentID)})
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}

	deleted := 0
	for _, key := range listing.Keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}

// deleteVectors removes the document's vector records one page at a
// time. Each page is deleted before the next listing, so every pass
// lists from the start; the cursor would point past records that no
// longer exist.
func (s *CatalogService) deleteVectors(ctx context.Context, documentID string) (int, error) {
	deleted := 0
	for {
		ids, _, err := s.vectors.ListIDs(ctx, documentID, s.pageSize, "")
		if err != nil {
			return deleted, fmt.Errorf("list vector ids: %w", err)
		}
		if len(ids) == 0 {
			return deleted, nil
		}

		if err := s.vectors.DeleteByIDs(ctx, ids); err != nil {
			return deleted, fmt.Errorf("delete vector ids: %w", err)
		}
		deleted += len(ids)

		if len(ids) < s.pageSize {
			return deleted, nil
		}
	}
}

// Reconcile cross-checks blob prefixes against catalog rows and reports
// state dangling on either side. It is read-only: deciding what to do
// with an orphan is an operator call, not an automatic one.
func (s *CatalogService) Reconcile(ctx context.Context) (*driving.OrphanReport, error) {
	if s.docs == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	if s.blobs == nil {
		return nil, domain.ErrBlobStoreUnavailable
	}

	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	catalogued := make(map[string]bool, len(docs))
	for _, doc := range docs {
		catalogued[doc.ID] = true
	}

	listing, err := s.blobs.List(ctx, driven.ListOptions{Delimiter: "/"})
	if err != nil {
		return nil, fmt.Errorf("list blob prefixes: %w", err)
	}

	report := &driving.OrphanReport{OrphanedBlobs: make(map[string]int)}
	blobOwners := make(map[string]bool, len(listing.Prefixes))

	for _, prefix := range listing.Prefixes {
		documentID := strings.TrimSuffix(prefix, "/")
		blobOwners[documentID] = true
		if catalogued[documentID] {
			continue
		}

		keys, err := s.blobs.List(ctx, driven.ListOptions{Prefix: prefix})
		if err != nil {
			return nil, fmt.Errorf("list orphan keys under %s: %w", prefix, err)
		}
		report.OrphanedBlobs[documentID] = len(keys.Keys)
	}

	for _, doc := range docs {
		if !blobOwners[doc.ID] {
			report.MissingBlobs = append(report.MissingBlobs, doc.ID)
		}
	}

	if len(report.OrphanedBlobs) > 0 || len(report.MissingBlobs) > 0 {
		logger.Warn("Reconcile: %d orphaned blob prefixes, %d catalogued documents without blobs",
			len(report.OrphanedBlobs), len(report.MissingBlobs))
	}

	return report, nil
}
