package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks legalrag/internal/rag Engine,Embedder,Generator

import (
	"context"
	"fmt"
	"time"

	"legalrag/internal/apperr"
	"legalrag/internal/contextutil"
	"legalrag/internal/indexer"
	"legalrag/internal/llm"
	"legalrag/internal/observability"
	"legalrag/internal/vectorstore"
)

// DefaultK is the number of chunks retrieved when a request does not choose one.
const DefaultK = 3

// Engine provides retrieval and retrieval-augmented answering.
type Engine interface {
	// Search returns at most k chunk texts, nearest first.
	Search(ctx context.Context, query string, k int) ([]string, error)
	// SearchChunks is Search with ids, sources and scores.
	SearchChunks(ctx context.Context, query string, k int) ([]RetrievedChunk, error)
	// Ask retrieves context for a question and generates an answer from it.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Embedder turns texts into vectors, one per input.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a reply to a conversation.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	generator   Generator
	defaultK    int
	params      llm.ChatParams
}

// NewEngine creates a new RAG engine. A defaultK <= 0 falls back to DefaultK.
func NewEngine(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	generator Generator,
	defaultK int,
) Engine {
	if defaultK <= 0 {
		defaultK = DefaultK
	}
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		generator:   generator,
		defaultK:    defaultK,
		params:      llm.ChatParams{Temperature: 0.7},
	}
}

// Search returns the texts of the k nearest chunks. An empty collection yields an empty slice.
func (e *ragEngine) Search(ctx context.Context, query string, k int) ([]string, error) {
	chunks, err := e.SearchChunks(ctx, query, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts, nil
}

// SearchChunks embeds the query once and asks the store for its k nearest chunks.
// Ranking and tie order are the store's.
func (e *ragEngine) SearchChunks(ctx context.Context, query string, k int) (chunks []RetrievedChunk, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, apperr.Search("validate k", fmt.Errorf("%w, got %d", vectorstore.ErrInvalidK, k))
	}

	ctx, span := observability.StartSearchSpan(ctx, e.collection, k)
	defer func() {
		observability.RecordSearchResult(span, len(chunks))
		observability.RecordError(span, err)
		span.End()
	}()

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, apperr.Search("embed query", err)
	}
	if len(embeddings) != 1 {
		return nil, apperr.Search("embed query", fmt.Errorf("expected 1 embedding, got %d", len(embeddings)))
	}

	results, err := e.vectorStore.Search(ctx, e.collection, embeddings[0], k, nil)
	if err != nil {
		return nil, apperr.Search("query store", err)
	}
	if len(results) > k {
		results = results[:k]
	}

	chunks = make([]RetrievedChunk, 0, len(results))
	for i, r := range results {
		source, _ := r.Meta[indexer.MetaSource].(string)
		chunks = append(chunks, RetrievedChunk{
			ID:         r.PointID,
			Text:       r.Text,
			Source:     source,
			ChunkIndex: intFromMeta(r.Meta[indexer.MetaChunkIndex]),
			Score:      r.Score,
			Rank:       i + 1,
		})
		logger.DebugContext(ctx, "retrieved chunk",
			"rank", i+1,
			"score", r.Score,
			"source", source,
			"text_length", len(r.Text),
		)
	}

	logger.InfoContext(ctx, "vector search completed", "results_count", len(chunks), "k_requested", k)
	return chunks, nil
}

// Ask answers a question from the retrieved context.
// With no matching chunks the generator still runs, on an empty context.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	k := req.K
	if k == 0 {
		k = e.defaultK
	}

	logger.InfoContext(ctx, "RAG query started", "question_length", len(req.Question), "k", k)

	chunks, err := e.SearchChunks(ctx, req.Question, k)
	if err != nil {
		return AskResponse{}, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: BuildSystemPrompt(texts)},
		{Role: llm.RoleUser, Content: req.Question},
	}

	genCtx, span := observability.StartLLMSpan(ctx, e.params.Model)
	start := time.Now()
	answer, err := e.generator.ChatWithMessages(genCtx, messages, e.params)
	elapsed := time.Since(start)
	observability.RecordError(span, err)
	span.End()
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AskResponse{}, apperr.ExternalService("generate answer", err)
	}

	logger.InfoContext(ctx, "RAG query completed", "chunks_used", len(chunks), "answer_length", len(answer), "duration", elapsed)

	return AskResponse{
		Answer:    answer,
		Context:   texts,
		Chunks:    chunks,
		TimeTaken: elapsed,
	}, nil
}

// intFromMeta reads an integer payload value whatever numeric type the store decoded it as.
func intFromMeta(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}
