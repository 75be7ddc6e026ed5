package driven

import "context"

// ListOptions configures a blob listing.
type ListOptions struct {
	// Prefix restricts the listing to keys starting with this prefix.
	Prefix string

	// Delimiter groups keys by the first occurrence of the delimiter
	// after the prefix, S3-style. With Delimiter "/" and an empty
	// Prefix, the first path segment of every key comes back as a
	// common prefix; that is how document identifiers are recovered.
	Delimiter string
}

// ListResult holds one listing page.
type ListResult struct {
	// Keys are the object keys at this level.
	Keys []string

	// Prefixes are the common prefixes rolled up by the delimiter,
	// each including the trailing delimiter (e.g. "doc-1/").
	Prefixes []string
}

// BlobStore is durable key-addressed storage for original documents and
// per-chunk text. Writes are last-write-wins; there are no transactions
// spanning the blob store and the vector index.
type BlobStore interface {
	// Get returns the content stored under key.
	// Returns domain.ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores content under key, overwriting any existing value.
	Put(ctx context.Context, key string, content []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List enumerates keys.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Close releases resources.
	Close() error
}
