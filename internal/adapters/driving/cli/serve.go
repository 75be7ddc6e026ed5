package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lifeodyssey/recruitreply/internal/adapters/driven/blob/filesystem"
	blobmemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/blob/memory"
	embeddingmemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/embedding/memory"
	embeddingollama "github.com/lifeodyssey/recruitreply/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/lifeodyssey/recruitreply/internal/adapters/driven/embedding/openai"
	"github.com/lifeodyssey/recruitreply/internal/adapters/driven/embedding/ratelimit"
	generationmemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/generation/memory"
	generationollama "github.com/lifeodyssey/recruitreply/internal/adapters/driven/generation/ollama"
	generationopenai "github.com/lifeodyssey/recruitreply/internal/adapters/driven/generation/openai"
	storagememory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/storage/memory"
	"github.com/lifeodyssey/recruitreply/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/vector/memory"
	"github.com/lifeodyssey/recruitreply/internal/adapters/driven/vector/qdrant"
	"github.com/lifeodyssey/recruitreply/internal/adapters/driving/httpapi"
	"github.com/lifeodyssey/recruitreply/internal/chunker"
	"github.com/lifeodyssey/recruitreply/internal/config"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
	"github.com/lifeodyssey/recruitreply/internal/core/services"
	"github.com/lifeodyssey/recruitreply/internal/logger"
)

var (
	serveAddr string
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Starts the HTTP server exposing upload, query, listing, and deletion
endpoints. Configuration is read from the config file; secrets come
from environment variables named there.

With --dev every external dependency is replaced by an in-process
implementation, so the server runs with no API keys, no Qdrant, and no
state surviving a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config host:port)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "run with in-memory providers and stores")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := buildBlobStore(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	docs, err := buildDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer docs.Close()

	embedder, err := buildEmbedding(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	generator, err := buildGeneration(cfg)
	if err != nil {
		return err
	}
	defer generator.Close()

	vectors, err := buildVectorIndex(ctx, cfg, embedder.Dimensions())
	if err != nil {
		return err
	}
	defer vectors.Close()

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunker.Size),
		chunker.WithOverlap(cfg.Chunker.Overlap),
	)

	ingestion := services.NewIngestionService(blobs, vectors, embedder, docs,
		services.WithSplitter(splitter),
		services.WithWorkers(cfg.Ingestion.Workers),
	)
	retrieval := services.NewRetrievalService(embedder, vectors, blobs, generator,
		services.WithTopK(cfg.Retrieval.TopK),
	)
	catalog := services.NewCatalogService(docs, blobs, vectors)

	server := httpapi.NewServer(httpapi.Config{
		Ingestion: ingestion,
		Retrieval: retrieval,
		Catalog:   catalog,
		Probes: map[string]httpapi.Pinger{
			"embedding":  embedder,
			"generation": generator,
		},
	})

	addr := serveAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	logger.Info("embedding model: %s (%d dims)", embedder.ModelName(), embedder.Dimensions())
	logger.Info("generation model: %s", generator.ModelName())

	return server.Start(ctx, addr)
}

// loadConfig resolves the config path and loads it. The default path
// is ~/.recruitreply/config.toml; a missing file yields defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".recruitreply", "config.toml")
	}
	return config.Load(path)
}

func buildBlobStore(cfg *config.Config) (driven.BlobStore, error) {
	if serveDev || cfg.Blob.Type == "memory" {
		return blobmemory.NewStore(), nil
	}
	return filesystem.NewStore(cfg.Blob.Dir)
}

func buildDocumentStore(cfg *config.Config) (driven.DocumentStore, error) {
	if serveDev {
		return storagememory.NewDocumentStore(), nil
	}
	return sqlite.NewStore(cfg.Catalog.DataDir)
}

func buildEmbedding(cfg *config.Config) (driven.EmbeddingService, error) {
	if serveDev {
		return embeddingmemory.NewEmbeddingService(cfg.Embedding.Dimensions), nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch cfg.Embedding.Type {
	case "openai":
		svc, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     cfg.Embedding.APIKey(),
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout(),
			Dimensions: cfg.Embedding.Dimensions,
		})
	case "ollama":
		svc = embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout(),
			Dimensions: cfg.Embedding.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider type %q", cfg.Embedding.Type)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, cfg.Embedding.RequestsPerSecond), nil
}

func buildGeneration(cfg *config.Config) (driven.GenerationService, error) {
	if serveDev {
		return generationmemory.NewGenerationService(""), nil
	}

	switch cfg.Generation.Type {
	case "openai":
		return generationopenai.NewGenerationService(generationopenai.Config{
			APIKey:  cfg.Generation.APIKey(),
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Timeout: cfg.Generation.Timeout(),
		})
	case "ollama":
		return generationollama.NewGenerationService(generationollama.Config{
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Timeout: cfg.Generation.Timeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown generation provider type %q", cfg.Generation.Type)
	}
}

func buildVectorIndex(ctx context.Context, cfg *config.Config, dimensions int) (driven.VectorIndex, error) {
	if serveDev || cfg.Vector.Type == "memory" {
		return vectormemory.NewIndex(), nil
	}

	index, err := qdrant.NewIndex(qdrant.Config{
		URL:        cfg.Vector.URL,
		APIKey:     cfg.Vector.APIKey(),
		Collection: cfg.Vector.Collection,
		Timeout:    cfg.Vector.Timeout(),
	})
	if err != nil {
		return nil, err
	}

	if err := index.EnsureCollection(ctx, dimensions); err != nil {
		return nil, fmt.Errorf("preparing vector collection: %w", err)
	}
	return index, nil
}
