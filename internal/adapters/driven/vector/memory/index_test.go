package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

func record(docID string, index int, vec []float32) driven.VectorRecord {
	return driven.VectorRecord{
		ID:     fmt.Sprintf("%s_%d", docID, index),
		Vector: vec,
		Metadata: driven.VectorMetadata{
			DocumentID: docID,
			ChunkIndex: index,
		},
	}
}

func TestQueryOrdersBySimilarity(t *testing.T) {
	index := NewIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{
		record("a", 0, []float32{1, 0}),
		record("b", 0, []float32{0.7, 0.7}),
		record("c", 0, []float32{0, 1}),
	}))

	matches, err := index.Query(ctx, []float32{1, 0}, driven.QueryOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a_0", matches[0].ID)
	assert.Equal(t, "b_0", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestQueryFiltersByDocument(t *testing.T) {
	index := NewIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{
		record("a", 0, []float32{1, 0}),
		record("a", 1, []float32{0.9, 0.1}),
		record("b", 0, []float32{1, 0}),
	}))

	matches, err := index.Query(ctx, []float32{1, 0}, driven.QueryOptions{TopK: 10, DocumentID: "a"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, match := range matches {
		assert.Equal(t, "a", match.Metadata.DocumentID)
	}
}

func TestQueryZeroVectorScoresZero(t *testing.T) {
	index := NewIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{record("a", 0, []float32{0, 0})}))

	matches, err := index.Query(ctx, []float32{1, 0}, driven.QueryOptions{TopK: 1})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Zero(t, matches[0].Score)
}

func TestUpsertReplacesExisting(t *testing.T) {
	index := NewIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{record("a", 0, []float32{1, 0})}))
	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{record("a", 0, []float32{0, 1})}))

	assert.Equal(t, 1, index.Len())

	matches, err := index.Query(ctx, []float32{0, 1}, driven.QueryOptions{TopK: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestListIDsPaginates(t *testing.T) {
	index := NewIndex()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{record("a", i, []float32{1, 0})}))
	}
	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{record("other", 0, []float32{1, 0})}))

	var all []string
	offset := ""
	pages := 0
	for {
		ids, next, err := index.ListIDs(ctx, "a", 3, offset)
		require.NoError(t, err)
		all = append(all, ids...)
		pages++
		if next == "" {
			break
		}
		offset = next
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, all, 7)
	for _, id := range all {
		assert.Contains(t, id, "a_")
	}
}

func TestListIDsUnknownDocument(t *testing.T) {
	index := NewIndex()

	ids, next, err := index.ListIDs(context.Background(), "ghost", 10, "")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, next)
}

func TestDeleteByIDs(t *testing.T) {
	index := NewIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []driven.VectorRecord{
		record("a", 0, []float32{1, 0}),
		record("a", 1, []float32{1, 0}),
	}))

	require.NoError(t, index.DeleteByIDs(ctx, []string{"a_0", "never-existed"}))
	assert.Equal(t, 1, index.Len())
}
