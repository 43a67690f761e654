package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks legalrag/internal/indexer Embedder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"legalrag/internal/apperr"
	"legalrag/internal/contextutil"
	"legalrag/internal/observability"
	"legalrag/internal/vectorstore"
)

// Metadata keys attached to every stored chunk.
const (
	MetaSource     = "source"
	MetaChunkIndex = "chunk_index"
)

// Embedder turns texts into fixed-width vectors, one per input, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline chunks document text, embeds the chunks in one batch and
// writes them to the vector store in one batch.
type Pipeline struct {
	chunker     *Chunker
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	newID       func() string
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunker *Chunker,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		chunker:     chunker,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		newID:       func() string { return uuid.New().String() },
	}
}

// Collection returns the name of the collection the pipeline writes to.
func (p *Pipeline) Collection() string {
	return p.collection
}

// Ingest indexes one document and returns the IDs of the points written,
// in chunk order; their number is the chunk count.
// Text that yields no chunks returns no IDs without calling the embedder or the store.
// An embedder or store failure aborts the call with an ingestion error.
// Re-ingesting the same document stores a second copy under new IDs.
func (p *Pipeline) Ingest(ctx context.Context, filename, text string) (ids []string, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	ctx, span := observability.StartIngestSpan(ctx, filename, p.collection)
	defer func() {
		observability.RecordIngestResult(span, len(ids))
		observability.RecordError(span, err)
		span.End()
	}()

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "source", filename)
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, apperr.Ingestion("embed chunks", fmt.Errorf("failed to embed %d chunks of %s: %w", len(chunks), filename, err))
	}
	if len(embeddings) != len(chunks) {
		return nil, apperr.Ingestion("embed chunks", fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks)))
	}

	points := make([]vectorstore.Point, len(chunks))
	written := make([]string, len(chunks))
	for i, c := range chunks {
		written[i] = p.newID()
		points[i] = vectorstore.Point{
			ID:   written[i],
			Vec:  embeddings[i],
			Text: c.Text,
			Meta: map[string]any{
				MetaSource:     filename,
				MetaChunkIndex: c.Index,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return nil, apperr.Ingestion("store chunks", fmt.Errorf("failed to upsert %d chunks of %s: %w", len(points), filename, err))
	}

	logger.InfoContext(ctx, "document ingested", "source", filename, "chunks", len(points), "collection", p.collection)
	return written, nil
}

// Remove deletes points written by an earlier Ingest.
func (p *Pipeline) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.vectorStore.Delete(ctx, p.collection, ids); err != nil {
		return apperr.Ingestion("remove chunks", fmt.Errorf("failed to delete %d points: %w", len(ids), err))
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "points removed", "collection", p.collection, "count", len(ids))
	return nil
}
