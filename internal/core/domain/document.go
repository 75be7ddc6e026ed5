package domain

import "fmt"

// Document is the logical unit a user uploads.
// There is no blob-level record for a document; the catalog row plus the
// blobs and vectors written at ingestion time together make one up.
type Document struct {
	// ID is the opaque unique identifier minted at ingestion.
	ID string

	// Title is the human-supplied title.
	Title string

	// Source is the human-supplied source label, e.g. "Resume".
	Source string

	// Timestamp is the creation time in milliseconds since epoch.
	Timestamp int64

	// ChunkCount is the total number of chunks the content produced.
	ChunkCount int
}

// Chunk is a contiguous, overlapping slice of a document's text.
// It is the atomic unit of embedding and retrieval.
type Chunk struct {
	// DocumentID links to the parent document.
	DocumentID string

	// Index is the zero-based position within the document.
	Index int

	// Text is the raw chunk content.
	Text string
}

// BlobKey returns the blob-store key holding this chunk's text.
func (c Chunk) BlobKey() string {
	return ChunkKey(c.DocumentID, c.Index)
}

// VectorID returns the vector-record identifier for this chunk.
func (c Chunk) VectorID() string {
	return VectorID(c.DocumentID, c.Index)
}

// OriginalKey returns the blob-store key holding a document's full text.
func OriginalKey(documentID string) string {
	return documentID + "/original.txt"
}

// ChunkKey returns the blob-store key for chunk i of a document.
func ChunkKey(documentID string, i int) string {
	return fmt.Sprintf("%s/chunk_%d.txt", documentID, i)
}

// VectorID returns the vector-record identifier for chunk i of a document.
func VectorID(documentID string, i int) string {
	return fmt.Sprintf("%s_%d", documentID, i)
}

// BlobPrefix returns the blob-store key prefix covering everything a
// document owns.
func BlobPrefix(documentID string) string {
	return documentID + "/"
}

// Source is one retrieved chunk backing an answer. Transient; built
// fresh per query and never persisted.
type Source struct {
	// ID is the parent document identifier.
	ID string `json:"id"`

	// Title is the parent document title.
	Title string `json:"title"`

	// Source is the parent document source label.
	Source string `json:"source"`

	// Content is the chunk text, or a sentinel when the blob is missing.
	Content string `json:"content"`

	// Similarity is the relevance score reported by the vector index.
	Similarity float64 `json:"similarity"`
}

// Answer is the result of a retrieval query.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources are the retrieved chunks in match-rank order.
	Sources []Source `json:"sources"`
}
