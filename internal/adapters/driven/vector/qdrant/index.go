// Package qdrant provides a vector index adapter over the Qdrant REST API.
// It assumes cosine distance and can create the collection if missing.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant base URL (default: http://localhost:6333).
	URL string

	// APIKey is the optional Qdrant API key.
	APIKey string

	// Collection is the collection name (required).
	Collection string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a Qdrant-backed implementation of driven.VectorIndex.
type Index struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string
}

// NewIndex creates a new Qdrant index adapter.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection is required")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}, nil
}

// EnsureCollection creates the collection with the given vector size if
// it does not exist. Qdrant answers 200 for an existing collection with
// the same schema.
func (x *Index) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("qdrant: invalid dimension %d", dimensions)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	return x.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", x.collection), body, nil)
}

// pointNamespace seeds the v5 UUIDs derived from record identifiers.
var pointNamespace = uuid.MustParse("7f2c4ad3-9c1e-4b58-8a6d-0f33e21c7b90")

// pointID maps a record identifier to the UUID Qdrant stores it under.
// Qdrant only accepts unsigned integers or UUIDs as point IDs, so the
// "{documentID}_{chunkIndex}" identifier cannot go on the wire as-is.
// The mapping is deterministic; re-upserting a record replaces the
// same point. The payload keeps the document ID and chunk index, which
// is how reads recover the record identifier.
func pointID(id string) string {
	return uuid.NewSHA1(pointNamespace, []byte(id)).String()
}

// upsertPoint is the Qdrant point wire format.
type upsertPoint struct {
	ID      string                `json:"id"`
	Vector  []float32             `json:"vector"`
	Payload driven.VectorMetadata `json:"payload"`
}

// Upsert inserts or replaces the given records.
func (x *Index) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]upsertPoint, len(records))
	for i, record := range records {
		points[i] = upsertPoint{
			ID:      pointID(record.ID),
			Vector:  record.Vector,
			Payload: record.Metadata,
		}
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", x.collection)
	return x.do(ctx, http.MethodPut, path, map[string]any{"points": points}, nil)
}

// Query returns the topK nearest records, optionally filtered to one
// document.
func (x *Index) Query(ctx context.Context, vector []float32, opts driven.QueryOptions) ([]driven.VectorMatch, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter := documentFilter(opts.DocumentID); filter != nil {
		req["filter"] = filter
	}

	var resp struct {
		Result []struct {
			Score   float64               `json:"score"`
			Payload driven.VectorMetadata `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", x.collection)
	if err := x.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	matches := make([]driven.VectorMatch, len(resp.Result))
	for i, hit := range resp.Result {
		// The stored point ID is a derived UUID; the record identifier
		// comes back out of the payload.
		matches[i] = driven.VectorMatch{
			ID:       domain.VectorID(hit.Payload.DocumentID, hit.Payload.ChunkIndex),
			Score:    hit.Score,
			Metadata: hit.Payload,
		}
	}
	return matches, nil
}

// ListIDs pages through a document's record IDs using the scroll API.
func (x *Index) ListIDs(ctx context.Context, documentID string, limit int, offset string) ([]string, string, error) {
	if limit <= 0 {
		limit = 100
	}

	req := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if filter := documentFilter(documentID); filter != nil {
		req["filter"] = filter
	}
	if offset != "" {
		req["offset"] = offset
	}

	var resp struct {
		Result struct {
			Points []struct {
				Payload driven.VectorMetadata `json:"payload"`
			} `json:"points"`
			NextPageOffset *string `json:"next_page_offset"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/scroll", x.collection)
	if err := x.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, "", err
	}

	ids := make([]string, len(resp.Result.Points))
	for i, point := range resp.Result.Points {
		ids[i] = domain.VectorID(point.Payload.DocumentID, point.Payload.ChunkIndex)
	}

	next := ""
	if resp.Result.NextPageOffset != nil {
		next = *resp.Result.NextPageOffset
	}
	return ids, next, nil
}

// DeleteByIDs removes records by identifier.
func (x *Index) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", x.collection)
	return x.do(ctx, http.MethodPost, path, map[string]any{"points": points}, nil)
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// documentFilter builds the payload filter restricting matches to one
// document. The payload field name matches the VectorMetadata JSON tag.
func documentFilter(documentID string) map[string]any {
	if documentID == "" {
		return nil
	}
	return map[string]any{
		"must": []map[string]any{
			{"key": "id", "match": map[string]any{"value": documentID}},
		},
	}
}

// do issues one JSON request against the Qdrant API and decodes the
// response into out when non-nil.
func (x *Index) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qdrant: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("qdrant: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant: %s %s returned %s: %s", method, path, resp.Status, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return nil
}
