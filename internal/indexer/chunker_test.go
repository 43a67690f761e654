package indexer

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"legalrag/internal/apperr"
)

// reassemble joins chunks, dropping the leading runes each chunk shares with its predecessor.
func reassemble(chunks []Chunk) string {
	var b strings.Builder
	prevEnd := 0
	for i, c := range chunks {
		runes := []rune(c.Text)
		skip := 0
		if i > 0 {
			skip = prevEnd - c.Start
		}
		b.WriteString(string(runes[skip:]))
		prevEnd = c.End
	}
	return b.String()
}

func TestNewChunker(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{name: "defaults", chunkSize: DefaultChunkSize, overlap: DefaultChunkOverlap},
		{name: "zero overlap", chunkSize: 10, overlap: 0},
		{name: "overlap one less than size", chunkSize: 10, overlap: 9},
		{name: "overlap equal to size", chunkSize: 10, overlap: 10, wantErr: true},
		{name: "overlap greater than size", chunkSize: 10, overlap: 20, wantErr: true},
		{name: "negative overlap", chunkSize: 10, overlap: -1, wantErr: true},
		{name: "zero size", chunkSize: 0, overlap: 0, wantErr: true},
		{name: "negative size", chunkSize: -5, overlap: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.chunkSize, tt.overlap)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewChunker(%d, %d) expected error, got nil", tt.chunkSize, tt.overlap)
				}
				if !errors.Is(err, apperr.ErrConfiguration) {
					t.Errorf("NewChunker() error = %v, want configuration error", err)
				}
				if c != nil {
					t.Error("NewChunker() should return nil chunker on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChunker() unexpected error: %v", err)
			}
			if c.ChunkSize() != tt.chunkSize || c.Overlap() != tt.overlap {
				t.Errorf("NewChunker() = (%d, %d), want (%d, %d)", c.ChunkSize(), c.Overlap(), tt.chunkSize, tt.overlap)
			}
		})
	}
}

func TestSplit_InvalidConfigFailsFast(t *testing.T) {
	chunks, err := Split("some text that would otherwise be chunked", 50, 50)
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("Split() error = %v, want configuration error", err)
	}
	if chunks != nil {
		t.Errorf("Split() chunks = %v, want nil", chunks)
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", 500, 50)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Split(\"\") returned %d chunks, want 0", len(chunks))
	}
}

func TestSplit_ShortText(t *testing.T) {
	text := "The tenant shall pay monthly."
	if len(text) != 29 {
		t.Fatalf("fixture length = %d, want 29", len(text))
	}

	chunks, err := Split(text, 500, 50)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("Split() chunk = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].Index != 0 || chunks[0].Start != 0 || chunks[0].End != 29 {
		t.Errorf("Split() chunk position = (%d, %d, %d), want (0, 0, 29)", chunks[0].Index, chunks[0].Start, chunks[0].End)
	}
}

func TestSplit_ExactlyChunkSize(t *testing.T) {
	text := strings.Repeat("a", 500)
	chunks, err := Split(text, 500, 50)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != text {
		t.Fatalf("Split() should return the whole input as one chunk, got %d chunks", len(chunks))
	}
}

func TestSplit_HardSplitWithoutTerminators(t *testing.T) {
	var b strings.Builder
	for b.Len() < 1200 {
		b.WriteString("abcdefghij")
	}
	text := b.String()

	chunks, err := Split(text, 500, 50)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}

	wantLens := []int{500, 500, 300}
	if len(chunks) != len(wantLens) {
		t.Fatalf("Split() returned %d chunks, want %d", len(chunks), len(wantLens))
	}
	for i, want := range wantLens {
		if got := utf8.RuneCountInString(chunks[i].Text); got != want {
			t.Errorf("chunk %d length = %d, want %d", i, got, want)
		}
	}
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i].Text[len(chunks[i].Text)-50:]
		head := chunks[i+1].Text[:50]
		if tail != head {
			t.Errorf("chunk %d trailing 50 chars %q != chunk %d leading 50 chars %q", i, tail, i+1, head)
		}
	}
	if got := reassemble(chunks); got != text {
		t.Error("reassembled chunks do not match input")
	}
}

func TestSplit_CleanBoundary(t *testing.T) {
	// Period at index 14, newline at index 31.
	text := "First sentence.Second line here\nThird part goes on and on"

	chunks, err := Split(text, 20, 5)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}

	want := []string{
		"First sentence.",
		"Second line here\n",
		"Third part goes on a",
		" on and on",
	}
	if len(chunks) != len(want) {
		t.Fatalf("Split() returned %d chunks %q, want %d", len(chunks), texts(chunks), len(want))
	}
	for i := range want {
		if chunks[i].Text != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, want[i])
		}
	}
}

func TestSplit_IgnoresBoundaryInsideOverlapWindow(t *testing.T) {
	// The only period sits at index 2, not beyond start+overlap (5), so the chunker hard-splits.
	text := "ab.defghijklmnopqrstuvwxyz"

	chunks, err := Split(text, 10, 5)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if chunks[0].Text != "ab.defghij" {
		t.Errorf("chunk 0 = %q, want hard split %q", chunks[0].Text, "ab.defghij")
	}
	if chunks[1].Start != 5 {
		t.Errorf("chunk 1 start = %d, want 5", chunks[1].Start)
	}
	if got := reassemble(chunks); got != text {
		t.Errorf("reassembled = %q, want %q", got, text)
	}
}

func TestSplit_TerminatorJustPastWindowNotIncluded(t *testing.T) {
	// A period right at start+chunkSize would make the chunk one rune too long.
	text := strings.Repeat("x", 10) + "." + strings.Repeat("y", 10)

	chunks, err := Split(text, 10, 2)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	for i, c := range chunks[:len(chunks)-1] {
		if n := utf8.RuneCountInString(c.Text); n > 10 {
			t.Errorf("non-final chunk %d length = %d, exceeds chunk size", i, n)
		}
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("§", 25)

	chunks, err := Split(text, 10, 2)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if i < len(chunks)-1 && utf8.RuneCountInString(c.Text) != 10 {
			t.Errorf("chunk %d has %d runes, want 10", i, utf8.RuneCountInString(c.Text))
		}
	}
	if got := reassemble(chunks); got != text {
		t.Error("reassembled chunks do not match input")
	}
}

func TestSplit_Properties(t *testing.T) {
	corpus := []string{
		"",
		"a",
		".",
		"\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n",
		strings.Repeat("Clause 1. The lessee agrees.\n", 40),
		strings.Repeat("no terminators at all here ", 60),
		strings.Repeat("Art. 5.\nSection 12.3. ", 33) + "trailing words without end",
		strings.Repeat("Überweisung fällig. ", 70),
	}
	params := [][2]int{{500, 50}, {100, 0}, {100, 99}, {7, 3}, {1, 0}, {2, 1}}

	for _, text := range corpus {
		for _, p := range params {
			chunkSize, overlap := p[0], p[1]
			chunks, err := Split(text, chunkSize, overlap)
			if err != nil {
				t.Fatalf("Split(size=%d, overlap=%d) unexpected error: %v", chunkSize, overlap, err)
			}

			if got := reassemble(chunks); got != text {
				t.Errorf("Split(size=%d, overlap=%d) does not reassemble to input (len %d)", chunkSize, overlap, len(text))
			}

			prevStart := -1
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk index = %d, want %d", c.Index, i)
				}
				if c.Text == "" {
					t.Errorf("chunk %d is empty", i)
				}
				if c.Start <= prevStart {
					t.Errorf("chunk %d start %d does not advance past %d", i, c.Start, prevStart)
				}
				prevStart = c.Start
				if i < len(chunks)-1 && utf8.RuneCountInString(c.Text) > chunkSize {
					t.Errorf("non-final chunk %d length %d exceeds %d", i, utf8.RuneCountInString(c.Text), chunkSize)
				}
				if i > 0 && chunks[i-1].End-c.Start > overlap {
					t.Errorf("chunk %d overlaps previous by %d, more than %d", i, chunks[i-1].End-c.Start, overlap)
				}
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("The court held that. Parties may appeal\n", 30)

	first, _ := Split(text, 120, 20)
	second, _ := Split(text, 120, 20)
	if len(first) != len(second) {
		t.Fatalf("Split() not deterministic: %d vs %d chunks", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunker_SplitMatchesSplit(t *testing.T) {
	c, err := NewChunker(40, 10)
	if err != nil {
		t.Fatalf("NewChunker() unexpected error: %v", err)
	}
	text := strings.Repeat("word ", 50)

	want, _ := Split(text, 40, 10)
	got := c.Split(text)
	if len(got) != len(want) {
		t.Fatalf("Chunker.Split() returned %d chunks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
