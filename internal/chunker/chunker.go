// Package chunker provides fixed-size overlapping text chunking.
package chunker

import "fmt"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter splits document content into fixed-size overlapping windows.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// New creates a splitter with the given options.
// A chunk size <= 0, a negative overlap, or an overlap >= chunk size is
// a programming error and panics.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		panic(fmt.Sprintf("chunker: chunk size must be positive, got %d", s.chunkSize))
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		panic(fmt.Sprintf("chunker: overlap must satisfy 0 <= overlap < chunk size, got %d (size %d)", s.overlap, s.chunkSize))
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split slices text into pieces of at most chunkSize characters, each
// overlapping the previous piece by overlap characters. Piece i starts
// at i*(chunkSize-overlap). Empty text yields no pieces; otherwise a
// text of length L yields ceil((L-overlap)/(chunkSize-overlap)) pieces,
// minimum one. A trailing window that would fall entirely inside the
// previous piece is not emitted.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	textLen := len(text)
	step := s.chunkSize - s.overlap
	// Last piece must start before textLen-overlap, otherwise the
	// previous piece already covered it.
	limit := textLen - s.overlap

	pieces := make([]string, 0, (textLen/step)+1)
	for start := 0; ; start += step {
		end := start + s.chunkSize
		if end > textLen {
			end = textLen
		}
		pieces = append(pieces, text[start:end])
		if start+step >= limit {
			break
		}
	}

	return pieces
}
