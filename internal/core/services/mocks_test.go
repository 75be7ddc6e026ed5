package services

import (
	"context"

	blobmemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/blob/memory"
	storagememory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/storage/memory"
	vectormemory "github.com/lifeodyssey/recruitreply/internal/adapters/driven/vector/memory"
	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding []float32
	embedErr  error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.embedding != nil {
		return m.embedding, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		vec, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockGenerator implements driven.GenerationService for testing.
type mockGenerator struct {
	answer     string
	generErr   error
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	if m.generErr != nil {
		return "", m.generErr
	}
	return m.answer, nil
}

func (m *mockGenerator) ModelName() string { return "mock-gen" }

func (m *mockGenerator) Ping(_ context.Context) error { return nil }

func (m *mockGenerator) Close() error { return nil }

// failingBlobStore wraps the in-memory blob store with injectable
// failures.
type failingBlobStore struct {
	*blobmemory.Store
	putErr    error
	deleteErr error
	listErr   error
}

func (f *failingBlobStore) Put(ctx context.Context, key string, content []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, key, content)
}

func (f *failingBlobStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, key)
}

func (f *failingBlobStore) List(ctx context.Context, opts driven.ListOptions) (*driven.ListResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.List(ctx, opts)
}

// failingVectorIndex wraps the in-memory index with injectable failures.
type failingVectorIndex struct {
	*vectormemory.Index
	upsertErr error
	deleteErr error
}

func (f *failingVectorIndex) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.Index.Upsert(ctx, records)
}

func (f *failingVectorIndex) DeleteByIDs(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Index.DeleteByIDs(ctx, ids)
}

// failingDocStore wraps the in-memory catalog with injectable failures.
type failingDocStore struct {
	*storagememory.DocumentStore
	saveErr error
}

func (f *failingDocStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.DocumentStore.SaveDocument(ctx, doc)
}
