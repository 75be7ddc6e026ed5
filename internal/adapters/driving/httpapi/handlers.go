package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/logger"
)

type queryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversationId,omitempty"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	Chunks     int    `json:"chunks"`
	Title      string `json:"title"`
}

type documentResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
	Chunks    int    `json:"chunks"`
}

type deleteResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
}

// handleQuery answers POST /query.
func (s *Server) handleQuery(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(rw, http.StatusBadRequest, "bad request")
		return
	}

	var req queryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid JSON")
		return
	}

	answer, err := s.cfg.Retrieval.Retrieve(r.Context(), req.Query, req.ConversationID)
	if err != nil {
		writeServiceError(rw, err, "Query is required")
		return
	}

	writeJSON(rw, http.StatusOK, answer)
}

// handleUpload answers POST /upload with a multipart form carrying a
// "file" part and a "title" field. An optional "source" field defaults
// to the uploaded filename.
func (s *Server) handleUpload(rw http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(rw, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(rw, http.StatusBadRequest, "File and title are required")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(rw, http.StatusBadRequest, "File and title are required")
		return
	}

	source := strings.TrimSpace(r.FormValue("source"))
	if source == "" {
		source = header.Filename
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(rw, http.StatusBadRequest, "failed to read file")
		return
	}

	receipt, err := s.cfg.Ingestion.Ingest(r.Context(), string(content), title, source)
	if err != nil {
		writeServiceError(rw, err, "invalid upload")
		return
	}

	writeJSON(rw, http.StatusOK, uploadResponse{
		Success:    true,
		DocumentID: receipt.DocumentID,
		Chunks:     receipt.ChunkCount,
		Title:      title,
	})
}

// handleListDocuments answers GET /documents with the catalog contents.
func (s *Server) handleListDocuments(rw http.ResponseWriter, r *http.Request) {
	docs, err := s.cfg.Catalog.List(r.Context())
	if err != nil {
		writeServiceError(rw, err, "invalid request")
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentResponse{
			ID:        doc.ID,
			Title:     doc.Title,
			Source:    doc.Source,
			Timestamp: doc.Timestamp,
			Chunks:    doc.ChunkCount,
		})
	}

	writeJSON(rw, http.StatusOK, out)
}

// handleDeleteDocument answers DELETE /documents/{id}.
func (s *Server) handleDeleteDocument(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	receipt, err := s.cfg.Catalog.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(rw, err, "Document ID is required")
		return
	}

	writeJSON(rw, http.StatusOK, deleteResponse{
		Success:    true,
		DocumentID: receipt.DocumentID,
	})
}

// handleHealth answers GET /healthz by running each configured probe.
func (s *Server) handleHealth(rw http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.cfg.Probes))
	healthy := true
	for name, probe := range s.cfg.Probes {
		if err := probe.Ping(r.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(rw, status, map[string]any{
		"healthy": healthy,
		"checks":  checks,
	})
}

// handleFallback answers unknown routes with JSON 404.
func (s *Server) handleFallback(rw http.ResponseWriter, _ *http.Request) {
	writeError(rw, http.StatusNotFound, "not found")
}

// writeServiceError maps a service error to an HTTP response. Invalid
// input gets a 400 with the given message; everything else a generic
// 500, with the detail kept in the server log.
func writeServiceError(rw http.ResponseWriter, err error, badRequestMsg string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(rw, http.StatusBadRequest, badRequestMsg)
		return
	}
	logger.Error("request failed: %v", err)
	writeError(rw, http.StatusInternalServerError, "internal server error")
}

func writeJSON(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		logger.Warn("encoding response: %v", err)
	}
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	writeJSON(rw, status, map[string]string{"error": msg})
}
