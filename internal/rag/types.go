package rag

import "time"

// AskRequest represents a question to answer from the indexed documents.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K is the number of chunks to retrieve. Zero selects the engine default.
	K int `json:"k,omitempty"`
}

// RetrievedChunk is one ranked search hit.
type RetrievedChunk struct {
	// ID is the chunk identifier assigned at ingestion.
	ID string `json:"id"`
	// Text is the chunk text.
	Text string `json:"text"`
	// Source is the filename the chunk was cut from.
	Source string `json:"source"`
	// ChunkIndex is the position of the chunk within its source.
	ChunkIndex int `json:"chunk_index"`
	// Score is the cosine similarity to the query; higher is nearer.
	Score float32 `json:"score"`
	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`
}

// AskResponse represents the answer to a question.
type AskResponse struct {
	// Answer is the generated answer from the LLM.
	Answer string `json:"answer"`
	// Context holds the retrieved chunk texts, nearest first, as given to the LLM.
	Context []string `json:"context"`
	// Chunks holds the retrieved chunks with their metadata.
	Chunks []RetrievedChunk `json:"chunks"`
	// TimeTaken is how long answer generation took.
	TimeTaken time.Duration `json:"-"`
}
