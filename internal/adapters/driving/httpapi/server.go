// Package httpapi exposes the ingestion, retrieval, and catalog
// services over HTTP with JSON bodies and permissive CORS, so a
// browser frontend on any origin can call it directly.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lifeodyssey/recruitreply/internal/core/ports/driving"
	"github.com/lifeodyssey/recruitreply/internal/logger"
)

// maxUploadSize caps multipart upload bodies (16MB).
const maxUploadSize = 16 << 20

// Pinger reports whether an upstream dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the services and health probes the server exposes.
type Config struct {
	Ingestion driving.IngestionService
	Retrieval driving.RetrievalService
	Catalog   driving.CatalogService

	// Probes are named health checks run by GET /healthz.
	Probes map[string]Pinger
}

// Server is the HTTP boundary of the engine.
type Server struct {
	cfg    Config
	server *http.Server
}

// NewServer creates a server for the given services.
func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// Handler returns the routed handler with CORS applied. Exposed
// separately so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Method-less patterns catch wrong-method requests on known paths,
	// which would otherwise get the mux's automatic 405. The boundary
	// answers every unrecognized method/path combination with JSON 404.
	mux.HandleFunc("/query", s.handleFallback)
	mux.HandleFunc("/upload", s.handleFallback)
	mux.HandleFunc("/documents", s.handleFallback)
	mux.HandleFunc("/documents/{id}", s.handleFallback)
	mux.HandleFunc("/healthz", s.handleFallback)
	mux.HandleFunc("/", s.handleFallback)

	return withCORS(mux)
}

// Start runs the server on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      150 * time.Second, // generation can be slow
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	logger.Info("HTTP server listening on %s", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown: %v", err)
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the server immediately.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
