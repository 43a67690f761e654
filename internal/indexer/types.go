package indexer

// Chunk is a contiguous slice of a document's text, the unit of retrieval.
type Chunk struct {
	Index int    // Position in emission order (starts at 0)
	Text  string // Chunk text content
	Start int    // Offset of the first character, in runes
	End   int    // Offset one past the last character, in runes
}
