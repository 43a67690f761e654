package indexer

import (
	"legalrag/internal/apperr"
)

const (
	// DefaultChunkSize is the maximum number of characters in a non-final chunk.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is the number of characters shared by consecutive hard-split chunks.
	DefaultChunkOverlap = 50
)

// Chunker splits document text into overlapping, boundary-aware chunks.
// Sizes are measured in runes. A Chunker is immutable and safe for concurrent use.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker validates the chunking parameters and returns a Chunker.
// It fails with a configuration error unless chunkSize > 0 and 0 <= overlap < chunkSize.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if err := validateChunkParams(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split splits text into chunks. See Split for the algorithm.
func (c *Chunker) Split(text string) []Chunk {
	return split([]rune(text), c.chunkSize, c.overlap)
}

// Split splits text into ordered chunks of at most chunkSize runes.
//
// Each step looks at the window [start, start+chunkSize). If the rest of the text fits,
// it becomes the final chunk. Otherwise the window is scanned backwards, stopping short of
// start+overlap, for a '.' or '\n'; the chunk ends just after it and the next chunk starts
// right there. Without such a boundary the window is cut hard and the next chunk starts
// overlap runes before the cut.
//
// Empty text yields no chunks. Invalid parameters yield a configuration error.
func Split(text string, chunkSize, overlap int) ([]Chunk, error) {
	if err := validateChunkParams(chunkSize, overlap); err != nil {
		return nil, err
	}
	return split([]rune(text), chunkSize, overlap), nil
}

func validateChunkParams(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return apperr.Configuration("validate chunking", "chunk size must be greater than 0, got %d", chunkSize)
	}
	if overlap < 0 {
		return apperr.Configuration("validate chunking", "overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return apperr.Configuration("validate chunking", "overlap %d must be less than chunk size %d", overlap, chunkSize)
	}
	return nil
}

// split assumes validated parameters. Every iteration advances start:
// a clean split moves it past start+overlap, a hard split by chunkSize-overlap > 0.
func split(text []rune, chunkSize, overlap int) []Chunk {
	n := len(text)
	if n == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, n/(chunkSize-overlap)+1)
	start := 0

	for start < n {
		end := start + chunkSize
		if end >= n {
			chunks = append(chunks, newChunk(text, len(chunks), start, n))
			break
		}

		if boundary := lastBoundary(text, start+overlap, end); boundary != -1 {
			chunks = append(chunks, newChunk(text, len(chunks), start, boundary+1))
			start = boundary + 1
			continue
		}

		// Hard split
		chunks = append(chunks, newChunk(text, len(chunks), start, end))
		start = end - overlap
	}

	return chunks
}

// lastBoundary returns the highest index i with floor < i < end holding a
// sentence terminator or line break, or -1.
func lastBoundary(text []rune, floor, end int) int {
	for i := end - 1; i > floor; i-- {
		if isBoundary(text[i]) {
			return i
		}
	}
	return -1
}

func isBoundary(r rune) bool {
	return r == '.' || r == '\n'
}

func newChunk(text []rune, index, start, end int) Chunk {
	return Chunk{
		Index: index,
		Text:  string(text[start:end]),
		Start: start,
		End:   end,
	}
}
