package chunking

import (
	"strings"
	"testing"
)

func TestSplitRespectsChunkSize(t *testing.T) {
	s := NewSplitter(10, 3)
	text := strings.Repeat("abcdefghij", 20)

	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks, got none")
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 10 {
			t.Fatalf("chunk %d has %d runes, limit is 10", i, n)
		}
	}
}

func TestSplitConsecutiveChunksShareOverlap(t *testing.T) {
	s := NewSplitter(10, 3)
	text := "abcdefghijklmnopqrstuvwxyz0123456789"

	chunks := s.Split(text)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		tail := string(prev[len(prev)-3:])
		head := string(cur[:3])
		if tail != head {
			t.Fatalf("chunks %d/%d do not overlap: %q vs %q", i-1, i, tail, head)
		}
	}
}

func TestSplitReconstructsOriginalText(t *testing.T) {
	s := NewSplitter(8, 2)
	text := "the quick brown fox jumps over the lazy dog"

	chunks := s.Split(text)
	var b strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i == 0 {
			b.WriteString(chunk)
			continue
		}
		b.WriteString(string(runes[2:]))
	}
	if b.String() != text {
		t.Fatalf("overlap-stripped concatenation mismatch:\n%q\n%q", b.String(), text)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(12, 4)
	text := strings.Repeat("lorem ipsum dolor sit amet ", 10)

	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter(10, 2)
	if chunks := s.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
	if chunks := s.Split("   \n\t  "); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %v", chunks)
	}
}

func TestNewSplitterNormalizesParameters(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.ChunkSize != 700 || s.Overlap != 0 {
		t.Fatalf("unexpected normalization: size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}

	s = NewSplitter(100, 100)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d must stay below chunk size %d", s.Overlap, s.ChunkSize)
	}
}
