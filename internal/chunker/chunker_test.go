package chunker

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.ChunkSize())
		}
		if s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.Overlap())
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(100))
		if s.ChunkSize() != 500 {
			t.Errorf("expected chunkSize 500, got %d", s.ChunkSize())
		}
		if s.Overlap() != 100 {
			t.Errorf("expected overlap 100, got %d", s.Overlap())
		}
	})

	t.Run("overlap equal to chunk size panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for overlap >= chunk size")
			}
		}()
		New(WithChunkSize(100), WithOverlap(100))
	})

	t.Run("non-positive chunk size panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for chunk size 0")
			}
		}()
		New(WithChunkSize(0))
	})

	t.Run("negative overlap panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for negative overlap")
			}
		}()
		New(WithOverlap(-1))
	})
}

func TestSplit_Empty(t *testing.T) {
	s := New()
	if pieces := s.Split(""); len(pieces) != 0 {
		t.Errorf("expected 0 pieces for empty text, got %d", len(pieces))
	}
}

func TestSplit_ShorterThanChunkSize(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	text := "short text"

	pieces := s.Split(text)
	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	if pieces[0] != text {
		t.Errorf("expected piece to equal input, got %q", pieces[0])
	}
}

func TestSplit_CountMatchesFormula(t *testing.T) {
	// count = ceil((L - O) / (S - O)), minimum 1
	tests := []struct {
		name    string
		length  int
		size    int
		overlap int
		want    int
	}{
		{"exactly one chunk", 1000, 1000, 200, 1},
		{"one char over", 1001, 1000, 200, 2},
		{"shorter than overlap", 100, 1000, 200, 1},
		{"several full steps", 5000, 1000, 200, 6},
		{"boundary multiple of step", 1800, 1000, 200, 2},
		{"no overlap", 250, 100, 0, 3},
		{"single char", 1, 100, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			pieces := s.Split(strings.Repeat("x", tt.length))
			if len(pieces) != tt.want {
				t.Errorf("length %d, size %d, overlap %d: expected %d pieces, got %d",
					tt.length, tt.size, tt.overlap, tt.want, len(pieces))
			}
		})
	}
}

func TestSplit_PieceBounds(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("abcdefghij", 45) // 450 chars

	pieces := s.Split(text)

	for i, p := range pieces {
		if len(p) > 100 {
			t.Errorf("piece %d exceeds chunk size: %d", i, len(p))
		}
	}

	// Every piece except the last is exactly chunk size.
	for i := 0; i < len(pieces)-1; i++ {
		if len(pieces[i]) != 100 {
			t.Errorf("piece %d should be full size, got %d", i, len(pieces[i]))
		}
	}

	// Piece i starts at i * (size - overlap).
	for i, p := range pieces {
		start := i * 80
		if !strings.HasPrefix(text[start:], p) {
			t.Errorf("piece %d does not start at offset %d", i, start)
		}
	}
}

func TestSplit_OverlapReconstruction(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("0123456789", 37) // 370 chars

	pieces := s.Split(text)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}

	var rebuilt strings.Builder
	rebuilt.WriteString(pieces[0])
	for _, p := range pieces[1:] {
		rebuilt.WriteString(p[20:])
	}
	if rebuilt.String() != text {
		t.Error("trimming the overlap from each subsequent piece should reconstruct the input")
	}
}

func TestSplit_NoOverlapCoversExactly(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(0))
	text := strings.Repeat("z", 120)

	pieces := s.Split(text)
	if got := strings.Join(pieces, ""); got != text {
		t.Error("pieces with zero overlap should concatenate to the input")
	}
}
