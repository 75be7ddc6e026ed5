// Package memory provides an in-memory blob store for tests and the
// self-contained dev mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store is an in-memory implementation of driven.BlobStore.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates a new in-memory blob store.
func NewStore() *Store {
	return &Store{
		blobs: make(map[string][]byte),
	}
}

// Get returns the content stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

// Put stores content under key, overwriting any existing value.
func (s *Store) Put(_ context.Context, key string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)
	s.blobs[key] = stored
	return nil
}

// Delete removes the key. Missing keys are ignored.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}

// List enumerates keys with prefix filtering and delimiter grouping.
func (s *Store) List(_ context.Context, opts driven.ListOptions) (*driven.ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &driven.ListResult{}
	seenPrefixes := make(map[string]bool)

	for key := range s.blobs {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}

		if opts.Delimiter != "" {
			rest := key[len(opts.Prefix):]
			if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
				prefix := key[:len(opts.Prefix)+idx+len(opts.Delimiter)]
				if !seenPrefixes[prefix] {
					seenPrefixes[prefix] = true
					result.Prefixes = append(result.Prefixes, prefix)
				}
				continue
			}
		}
		result.Keys = append(result.Keys, key)
	}

	sort.Strings(result.Keys)
	sort.Strings(result.Prefixes)
	return result, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored blobs. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
