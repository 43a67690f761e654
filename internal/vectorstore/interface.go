package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks legalrag/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrInvalidK is returned by Search when k is not positive.
var ErrInvalidK = errors.New("k must be greater than 0")

// Point represents a vector point with its chunk text and metadata.
type Point struct {
	ID   string
	Vec  []float32
	Text string
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
// Score is cosine similarity; higher is nearer.
type SearchResult struct {
	PointID string
	Score   float32
	Text    string
	Meta    map[string]any
}

// CollectionInfo contains information about a collection.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist and
	// validates the vector size if it does.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or updates points in the collection as one batch.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns at most k nearest points, nearest first, with optional equality filters.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionInfo reports vector size and point count for a collection.
	CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)
}
