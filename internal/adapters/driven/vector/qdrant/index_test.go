package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

func TestPointIDsAreDeterministicUUIDs(t *testing.T) {
	first := pointID("doc-1_0")
	second := pointID("doc-1_0")
	other := pointID("doc-1_1")

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestNewIndexRequiresCollection(t *testing.T) {
	_, err := NewIndex(Config{})
	assert.Error(t, err)
}

func TestEnsureCollection(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/docs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(rw).Encode(map[string]any{"result": true, "status": "ok"})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	require.NoError(t, index.EnsureCollection(context.Background(), 1536))

	vectors := gotBody["vectors"].(map[string]any)
	assert.Equal(t, float64(1536), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestUpsertSendsPointsWithPayload(t *testing.T) {
	var gotBody struct {
		Points []struct {
			ID      string                `json:"id"`
			Vector  []float32             `json:"vector"`
			Payload driven.VectorMetadata `json:"payload"`
		} `json:"points"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/docs/points", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(rw).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	err = index.Upsert(context.Background(), []driven.VectorRecord{{
		ID:     "doc-1_0",
		Vector: []float32{0.1, 0.2},
		Metadata: driven.VectorMetadata{
			DocumentID:  "doc-1",
			Title:       "Handbook",
			Source:      "handbook.txt",
			Timestamp:   1700000000000,
			ChunkIndex:  0,
			TotalChunks: 3,
		},
	}})
	require.NoError(t, err)

	require.Len(t, gotBody.Points, 1)
	// The record identifier is not a legal Qdrant point ID; the wire
	// carries a derived UUID and the payload keeps the identity.
	_, err = uuid.Parse(gotBody.Points[0].ID)
	require.NoError(t, err)
	assert.Equal(t, pointID("doc-1_0"), gotBody.Points[0].ID)
	assert.Equal(t, "doc-1", gotBody.Points[0].Payload.DocumentID)
	assert.Equal(t, 3, gotBody.Points[0].Payload.TotalChunks)
}

func TestQueryDecodesMatches(t *testing.T) {
	var gotReq map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/docs/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(rw).Encode(map[string]any{
			"result": []map[string]any{
				{
					"id":    pointID("doc-1_2"),
					"score": 0.93,
					"payload": map[string]any{
						"id": "doc-1", "title": "Handbook", "chunkIndex": 2, "totalChunks": 3,
					},
				},
			},
		})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	matches, err := index.Query(context.Background(), []float32{1, 0}, driven.QueryOptions{TopK: 5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc-1_2", matches[0].ID)
	assert.InDelta(t, 0.93, matches[0].Score, 1e-9)
	assert.Equal(t, "doc-1", matches[0].Metadata.DocumentID)
	assert.Equal(t, 2, matches[0].Metadata.ChunkIndex)

	assert.Equal(t, float64(5), gotReq["limit"])
	assert.Equal(t, true, gotReq["with_payload"])
	assert.NotContains(t, gotReq, "filter")
}

func TestQuerySendsDocumentFilter(t *testing.T) {
	var gotReq map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(rw).Encode(map[string]any{"result": []any{}})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	_, err = index.Query(context.Background(), []float32{1}, driven.QueryOptions{TopK: 3, DocumentID: "doc-9"})
	require.NoError(t, err)

	filter := gotReq["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	clause := must[0].(map[string]any)
	assert.Equal(t, "id", clause["key"])
	assert.Equal(t, map[string]any{"value": "doc-9"}, clause["match"])
}

func TestListIDsScrollsWithCursor(t *testing.T) {
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/docs/points/scroll", r.URL.Path)
		calls++

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Equal(t, true, req["with_payload"])

		point := func(i int) map[string]any {
			return map[string]any{
				"id":      pointID(fmt.Sprintf("doc-1_%d", i)),
				"payload": map[string]any{"id": "doc-1", "chunkIndex": i},
			}
		}

		if calls == 1 {
			assert.NotContains(t, req, "offset")
			json.NewEncoder(rw).Encode(map[string]any{
				"result": map[string]any{
					"points":           []map[string]any{point(0), point(1)},
					"next_page_offset": pointID("doc-1_2"),
				},
			})
			return
		}

		assert.Equal(t, pointID("doc-1_2"), req["offset"])
		json.NewEncoder(rw).Encode(map[string]any{
			"result": map[string]any{
				"points":           []map[string]any{point(2)},
				"next_page_offset": nil,
			},
		})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	ids, next, err := index.ListIDs(context.Background(), "doc-1", 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1_0", "doc-1_1"}, ids)
	assert.Equal(t, pointID("doc-1_2"), next)

	ids, next, err = index.ListIDs(context.Background(), "doc-1", 2, next)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1_2"}, ids)
	assert.Empty(t, next)
}

func TestDeleteByIDs(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/docs/points/delete", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(rw).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	require.NoError(t, index.DeleteByIDs(context.Background(), []string{"a_0", "a_1"}))
	assert.Equal(t, []any{pointID("a_0"), pointID("a_1")}, gotBody["points"])
}

func TestAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		json.NewEncoder(rw).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs", APIKey: "secret"})
	require.NoError(t, err)
	require.NoError(t, index.DeleteByIDs(context.Background(), []string{"x"}))
}

func TestErrorStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte(`{"status":{"error":"bad vector size"}}`))
	}))
	defer server.Close()

	index, err := NewIndex(Config{URL: server.URL, Collection: "docs"})
	require.NoError(t, err)

	err = index.EnsureCollection(context.Background(), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad vector size")
}
