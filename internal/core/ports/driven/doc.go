// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// The ingestion and retrieval pipelines depend only on these interfaces.
// Concrete adapters (OpenAI, Ollama, Qdrant, filesystem, SQLite, and the
// in-memory test doubles) live under internal/adapters/driven and are
// injected at construction time.
package driven
