// Package memory provides an in-memory vector index with exact cosine
// similarity search, for tests and the self-contained dev mode.
package memory

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu      sync.RWMutex
	records map[string]driven.VectorRecord
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{
		records: make(map[string]driven.VectorRecord),
	}
}

// Upsert inserts or replaces the given records.
func (x *Index) Upsert(_ context.Context, records []driven.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, record := range records {
		vector := make([]float32, len(record.Vector))
		copy(vector, record.Vector)
		record.Vector = vector
		x.records[record.ID] = record
	}
	return nil
}

// Query returns the topK nearest records by cosine similarity,
// descending.
func (x *Index) Query(_ context.Context, vector []float32, opts driven.QueryOptions) ([]driven.VectorMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	matches := make([]driven.VectorMatch, 0, len(x.records))
	for _, record := range x.records {
		if opts.DocumentID != "" && record.Metadata.DocumentID != opts.DocumentID {
			continue
		}
		matches = append(matches, driven.VectorMatch{
			ID:       record.ID,
			Score:    cosineSimilarity(vector, record.Vector),
			Metadata: record.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// ListIDs pages through the record IDs of one document in a stable
// order. The offset cursor is the numeric position in that order.
func (x *Index) ListIDs(_ context.Context, documentID string, limit int, offset string) ([]string, string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var all []string
	for id, record := range x.records {
		if record.Metadata.DocumentID == documentID {
			all = append(all, id)
		}
	}
	sort.Strings(all)

	start := 0
	if offset != "" {
		parsed, err := strconv.Atoi(offset)
		if err == nil && parsed > 0 {
			start = parsed
		}
	}
	if start >= len(all) {
		return nil, "", nil
	}

	end := start + limit
	next := ""
	if end >= len(all) {
		end = len(all)
	} else {
		next = strconv.Itoa(end)
	}
	return all[start:end], next, nil
}

// DeleteByIDs removes records by identifier. Unknown IDs are ignored.
func (x *Index) DeleteByIDs(_ context.Context, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		delete(x.records, id)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Len returns the number of stored records. Test helper.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
