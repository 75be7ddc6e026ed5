package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blobmemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/blob/memory"
	storagememory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/storage/memory"
	vectormemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/vector/memory"
	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

func TestIngest_StoresChunksVectorsAndCatalogRow(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := vectormemory.NewIndex()
	docs := storagememory.NewDocumentStore()
	embedder := &mockEmbedder{}

	svc := NewIngestionService(blobs, vectors, embedder, docs)

	// 2500 chars with size 1000 / overlap 200 -> 3 chunks.
	content := strings.Repeat("a", 2500)
	receipt, err := svc.Ingest(context.Background(), content, "Benefits FAQ", "faq.txt")
	require.NoError(t, err)
	require.NotEmpty(t, receipt.DocumentID)
	assert.Equal(t, 3, receipt.ChunkCount)

	// Original plus one blob per chunk.
	assert.Equal(t, 4, blobs.Len())
	original, err := blobs.Get(context.Background(), domain.OriginalKey(receipt.DocumentID))
	require.NoError(t, err)
	assert.Equal(t, content, string(original))

	for i := 0; i < 3; i++ {
		chunk, err := blobs.Get(context.Background(), domain.ChunkKey(receipt.DocumentID, i))
		require.NoError(t, err)
		assert.NotEmpty(t, chunk)
	}

	assert.Equal(t, 3, vectors.Len())
	assert.Equal(t, 3, embedder.calls)

	// Every vector record carries the full document metadata.
	ids, next, err := vectors.ListIDs(context.Background(), receipt.DocumentID, 10, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, ids, 3)
	for i, id := range ids {
		assert.Equal(t, domain.VectorID(receipt.DocumentID, i), id)
	}

	doc, err := docs.GetDocument(context.Background(), receipt.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Benefits FAQ", doc.Title)
	assert.Equal(t, "faq.txt", doc.Source)
	assert.Equal(t, 3, doc.ChunkCount)
	assert.Positive(t, doc.Timestamp)
}

func TestIngest_MetadataCarriesTotalChunks(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := vectormemory.NewIndex()
	docs := storagememory.NewDocumentStore()
	embedder := &mockEmbedder{embedding: []float32{1, 0, 0}}

	svc := NewIngestionService(blobs, vectors, embedder, docs)

	receipt, err := svc.Ingest(context.Background(), strings.Repeat("b", 1801), "Handbook", "hr")
	require.NoError(t, err)
	require.Equal(t, 3, receipt.ChunkCount)

	matches, err := vectors.Query(context.Background(), []float32{1, 0, 0}, driven.QueryOptions{TopK: 10})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	seen := make(map[int]bool)
	for _, match := range matches {
		assert.Equal(t, receipt.DocumentID, match.Metadata.DocumentID)
		assert.Equal(t, "Handbook", match.Metadata.Title)
		assert.Equal(t, "hr", match.Metadata.Source)
		assert.Equal(t, 3, match.Metadata.TotalChunks)
		seen[match.Metadata.ChunkIndex] = true
	}
	assert.Len(t, seen, 3, "each chunk index appears exactly once")
}

func TestIngest_EmptyContentIndexesNothing(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := vectormemory.NewIndex()
	docs := storagememory.NewDocumentStore()

	svc := NewIngestionService(blobs, vectors, &mockEmbedder{}, docs)

	receipt, err := svc.Ingest(context.Background(), "", "Empty", "nothing.txt")
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.DocumentID)
	assert.Equal(t, 0, receipt.ChunkCount)

	// The original blob is kept, but no chunks, vectors, or catalog row.
	assert.Equal(t, 1, blobs.Len())
	assert.Equal(t, 0, vectors.Len())
	assert.Equal(t, 0, docs.Len())
}

func TestIngest_EmbedFailureCleansUp(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := vectormemory.NewIndex()
	docs := storagememory.NewDocumentStore()
	embedder := &mockEmbedder{embedErr: errors.New("quota exceeded")}

	svc := NewIngestionService(blobs, vectors, embedder, docs)

	_, err := svc.Ingest(context.Background(), strings.Repeat("c", 3000), "Doomed", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialIngest)

	// Everything written before the failure is swept away.
	assert.Equal(t, 0, blobs.Len())
	assert.Equal(t, 0, vectors.Len())
	assert.Equal(t, 0, docs.Len())
}

func TestIngest_UpsertFailureCleansUp(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := &failingVectorIndex{Index: vectormemory.NewIndex(), upsertErr: errors.New("index down")}
	docs := storagememory.NewDocumentStore()

	svc := NewIngestionService(blobs, vectors, &mockEmbedder{}, docs)

	_, err := svc.Ingest(context.Background(), strings.Repeat("d", 500), "Doomed", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialIngest)
	assert.Equal(t, 0, blobs.Len())
	assert.Equal(t, 0, docs.Len())
}

func TestIngest_CatalogFailureCleansUp(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := vectormemory.NewIndex()
	docs := &failingDocStore{DocumentStore: storagememory.NewDocumentStore(), saveErr: errors.New("disk full")}

	svc := NewIngestionService(blobs, vectors, &mockEmbedder{}, docs)

	_, err := svc.Ingest(context.Background(), strings.Repeat("e", 500), "Doomed", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPartialIngest, "catalog write failure is not a chunk failure")

	assert.Equal(t, 0, blobs.Len())
	assert.Equal(t, 0, vectors.Len())
	assert.Equal(t, 0, docs.Len())
}

func TestIngest_BoundedWorkers(t *testing.T) {
	blobs := blobmemory.NewStore()
	vectors := vectormemory.NewIndex()
	docs := storagememory.NewDocumentStore()

	svc := NewIngestionService(blobs, vectors, &mockEmbedder{}, docs, WithWorkers(2))

	// 20 chunks through 2 workers still land completely.
	content := strings.Repeat("f", 1000*20-200*19)
	receipt, err := svc.Ingest(context.Background(), content, "Big", "big.txt")
	require.NoError(t, err)
	assert.Equal(t, 20, receipt.ChunkCount)
	assert.Equal(t, 20, vectors.Len())
	assert.Equal(t, 21, blobs.Len())
}

func TestIngest_NilDependencies(t *testing.T) {
	svc := NewIngestionService(nil, nil, nil, nil)
	_, err := svc.Ingest(context.Background(), "text", "t", "s")
	assert.ErrorIs(t, err, domain.ErrBlobStoreUnavailable)
}
