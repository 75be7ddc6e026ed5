// Package config loads the service configuration from a TOML file with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// ProviderConfig configures one OpenAI- or Ollama-style upstream.
type ProviderConfig struct {
	// Type selects the adapter: "openai" or "ollama".
	Type string `toml:"type"`

	// BaseURL is the API base URL. Defaults depend on Type.
	BaseURL string `toml:"base_url"`

	// Model is the model name. Defaults depend on Type.
	Model string `toml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`

	// Dimensions overrides the embedding vector size (embedding only).
	Dimensions int `toml:"dimensions"`

	// RequestsPerSecond throttles calls to the upstream (embedding
	// only; zero disables throttling).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// VectorConfig selects and configures the vector index.
type VectorConfig struct {
	// Type selects the adapter: "qdrant" or "memory".
	Type string `toml:"type"`

	URL         string `toml:"url"`
	APIKeyEnv   string `toml:"api_key_env"`
	Collection  string `toml:"collection"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// BlobConfig configures the blob store.
type BlobConfig struct {
	// Type selects the adapter: "filesystem" or "memory".
	Type string `toml:"type"`

	// Dir is the filesystem root for blob objects.
	Dir string `toml:"dir"`
}

// CatalogConfig configures the document catalog store.
type CatalogConfig struct {
	// DataDir holds the SQLite database. Empty means the default
	// user data directory.
	DataDir string `toml:"data_dir"`
}

// RetrievalConfig tunes the retrieval pipeline.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per query.
	TopK int `toml:"top_k"`
}

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	// Workers bounds the per-chunk fan-out during ingestion.
	Workers int `toml:"workers"`
}

// Config is the root configuration.
type Config struct {
	Server     ServerConfig    `toml:"server"`
	Chunker    ChunkerConfig   `toml:"chunker"`
	Embedding  ProviderConfig  `toml:"embedding"`
	Generation ProviderConfig  `toml:"generation"`
	Vector     VectorConfig    `toml:"vector"`
	Blob       BlobConfig      `toml:"blob"`
	Catalog    CatalogConfig   `toml:"catalog"`
	Retrieval  RetrievalConfig `toml:"retrieval"`
	Ingestion  IngestionConfig `toml:"ingestion"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Chunker: ChunkerConfig{Size: 1000, Overlap: 200},
		Embedding: ProviderConfig{
			Type:        "openai",
			Model:       "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 60,
		},
		Generation: ProviderConfig{
			Type:        "openai",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 120,
		},
		Vector: VectorConfig{
			Type:        "qdrant",
			URL:         "http://localhost:6333",
			APIKeyEnv:   "QDRANT_API_KEY",
			Collection:  "recruitreply",
			TimeoutSecs: 15,
		},
		Blob:      BlobConfig{Type: "filesystem", Dir: ""},
		Catalog:   CatalogConfig{},
		Retrieval: RetrievalConfig{TopK: 5},
		Ingestion: IngestionConfig{Workers: 4},
	}
}

// Load reads the configuration from path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks constraints a later construction step would only
// surface as a panic.
func (c *Config) Validate() error {
	if c.Chunker.Size <= 0 {
		return fmt.Errorf("chunker.size must be positive, got %d", c.Chunker.Size)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size {
		return fmt.Errorf("chunker.overlap must satisfy 0 <= overlap < size, got %d", c.Chunker.Overlap)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Ingestion.Workers <= 0 {
		return fmt.Errorf("ingestion.workers must be positive, got %d", c.Ingestion.Workers)
	}
	return nil
}

// APIKey resolves a provider's API key from its configured environment
// variable. Empty is allowed; adapters that require a key reject it.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// Timeout returns the configured timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// APIKey resolves the vector store API key from the environment.
func (v VectorConfig) APIKey() string {
	if v.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(v.APIKeyEnv)
}

// Timeout returns the configured timeout as a duration.
func (v VectorConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSecs) * time.Second
}

// applyDefaults backfills zero values a partial config file left unset.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = def.Chunker.Size
	}
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = def.Embedding.Type
	}
	if cfg.Generation.Type == "" {
		cfg.Generation.Type = def.Generation.Type
	}
	if cfg.Vector.Type == "" {
		cfg.Vector.Type = def.Vector.Type
	}
	if cfg.Vector.Collection == "" {
		cfg.Vector.Collection = def.Vector.Collection
	}
	if cfg.Blob.Type == "" {
		cfg.Blob.Type = def.Blob.Type
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Ingestion.Workers == 0 {
		cfg.Ingestion.Workers = def.Ingestion.Workers
	}
}
