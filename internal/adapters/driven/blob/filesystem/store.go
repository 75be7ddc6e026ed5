// Package filesystem provides a blob store backed by the local filesystem.
// Keys map to file paths under a root directory; the "/" separator in a
// key becomes a directory boundary.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lifeodyssey/recruitreply/internal/core/domain"
	"github.com/lifeodyssey/recruitreply/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store is a filesystem-backed blob store.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at dir. If dir is empty,
// defaults to ~/.recruitreply/blobs.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".recruitreply", "blobs")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	return &Store{root: dir}, nil
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// Get returns the content stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	return content, nil
}

// Put stores content under key, creating parent directories as needed.
func (s *Store) Put(_ context.Context, key string, content []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating blob parent directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("writing blob %s: %w", key, err)
	}
	return nil
}

// Delete removes the key. Missing keys are ignored. An emptied parent
// directory is pruned so prefix listings do not report it.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}

	// Best-effort prune; fails once the directory is non-empty.
	dir := filepath.Dir(path)
	for dir != s.root {
		if os.Remove(dir) != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}

// List enumerates keys under the root, applying prefix filtering and
// S3-style delimiter grouping. Keys and prefixes come back sorted.
func (s *Store) List(_ context.Context, opts driven.ListOptions) (*driven.ListResult, error) {
	var keys []string
	err := filepath.WalkDir(s.walkRoot(opts.Prefix), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing stored under the prefix directory.
			return &driven.ListResult{}, nil
		}
		return nil, fmt.Errorf("walking blob directory: %w", err)
	}

	result := &driven.ListResult{}
	seenPrefixes := make(map[string]bool)

	for _, key := range keys {
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

// walkRoot returns the deepest directory the prefix pins down, so a
// per-document listing walks only that document's files instead of the
// whole store. A prefix with no complete path segment, or one whose
// segments would step outside the root, walks the whole root.
func (s *Store) walkRoot(prefix string) string {
	idx := strings.LastIndex(prefix, "/")
	if idx < 0 {
		return s.root
	}
	dir := prefix[:idx]
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return s.root
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(dir))
}

// keyPath validates a key and resolves it to an absolute path inside
// the root. Path traversal outside the root is rejected.
func (s *Store) keyPath(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: invalid blob key %q", domain.ErrInvalidInput, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: invalid blob key %q", domain.ErrInvalidInput, key)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
