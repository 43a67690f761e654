package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"

	"legalrag/internal/contextutil"
	"legalrag/internal/storage"
)

// SQLiteStore implements VectorStore on top of the SQLite chunk store.
// Search is an exact cosine scan over the collection. Each Upsert is one
// transaction, so a failed batch leaves nothing behind. Equal scores keep
// insertion order.
type SQLiteStore struct {
	chunks storage.ChunkStore
}

// NewSQLiteStore creates a vector store backed by chunks.
func NewSQLiteStore(chunks storage.ChunkStore) *SQLiteStore {
	return &SQLiteStore{chunks: chunks}
}

// EnsureCollection creates the collection or validates its vector size.
func (s *SQLiteStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0, got %d", vectorSize)
	}
	if err := s.chunks.EnsureCollection(ctx, collection, vectorSize); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert writes all points in one transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	coll, err := s.chunks.GetCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to load collection %q: %w", collection, err)
	}

	records := make([]storage.ChunkRecord, 0, len(points))
	for _, p := range points {
		if len(p.Vec) != coll.VectorSize {
			return fmt.Errorf("point %s has vector size %d, collection %q expects %d", p.ID, len(p.Vec), collection, coll.VectorSize)
		}
		records = append(records, storage.ChunkRecord{
			ID:         p.ID,
			Collection: collection,
			Text:       p.Text,
			Embedding:  p.Vec,
			Metadata:   p.Meta,
		})
	}

	if err := s.chunks.InsertBatch(ctx, records); err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search returns the k points with the highest cosine similarity to query.
// A missing or empty collection yields no results.
func (s *SQLiteStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, ErrInvalidK
	}

	records, err := s.chunks.ListByCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(records))
	for _, r := range records {
		if !matchesFilters(r.Metadata, filters) {
			continue
		}
		if len(r.Embedding) != len(query) {
			return nil, fmt.Errorf("query has vector size %d, point %s has %d", len(query), r.ID, len(r.Embedding))
		}
		results = append(results, SearchResult{
			PointID: r.ID,
			Score:   cosine(query, r.Embedding),
			Text:    r.Text,
			Meta:    r.Metadata,
		})
	}

	// Records arrive in insertion order; a stable sort keeps it for ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Delete removes points by their IDs.
func (s *SQLiteStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.chunks.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// CollectionInfo returns the vector size and point count of a collection.
func (s *SQLiteStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	coll, err := s.chunks.GetCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}
	n, err := s.chunks.CountByCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}
	return &CollectionInfo{
		VectorSize:  coll.VectorSize,
		PointsCount: n,
		Status:      "green",
	}, nil
}

// matchesFilters reports whether every filter key equals the metadata value.
// Values are compared by their printed form so 2 matches a JSON-decoded 2.0.
func matchesFilters(meta map[string]any, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := meta[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// cosine returns the cosine similarity of a and b, or 0 if either is a zero vector.
func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
