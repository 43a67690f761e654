package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"legalrag/internal/storage"
	storagemocks "legalrag/internal/storage/mocks"
)

func newTestSQLiteStore(t *testing.T, collection string, size int) *SQLiteStore {
	t.Helper()
	db, err := storage.New(t.TempDir() + "/vectors.db")
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	store := NewSQLiteStore(storage.NewChunkRepo(db))
	if err := store.EnsureCollection(context.Background(), collection, size); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	return store
}

func TestSQLiteStore_EnsureCollection(t *testing.T) {
	store := newTestSQLiteStore(t, "legal_docs", 3)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "legal_docs", 3); err != nil {
		t.Errorf("EnsureCollection() same size error = %v", err)
	}
	if err := store.EnsureCollection(ctx, "legal_docs", 5); err == nil {
		t.Error("EnsureCollection() with different size expected error, got nil")
	}
	if err := store.EnsureCollection(ctx, "other", 0); err == nil {
		t.Error("EnsureCollection() with zero size expected error, got nil")
	}

	info, err := store.CollectionInfo(ctx, "legal_docs")
	if err != nil || info.VectorSize != 3 {
		t.Errorf("CollectionInfo(legal_docs) = %+v, %v; want size 3", info, err)
	}
	if _, err := store.CollectionInfo(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CollectionInfo(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SearchRanksByCosine(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 2)
	ctx := context.Background()

	points := []Point{
		{ID: "east", Vec: []float32{1, 0}, Text: "east", Meta: map[string]any{"source": "a.pdf", "chunk_index": 0}},
		{ID: "north", Vec: []float32{0, 1}, Text: "north", Meta: map[string]any{"source": "a.pdf", "chunk_index": 1}},
		{ID: "northeast", Vec: []float32{1, 1}, Text: "northeast", Meta: map[string]any{"source": "b.pdf", "chunk_index": 0}},
	}
	if err := store.Upsert(ctx, "docs", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name    string
		query   []float32
		k       int
		filters map[string]any
		want    []string
	}{
		{name: "nearest first", query: []float32{1, 0.1}, k: 3, want: []string{"east", "northeast", "north"}},
		{name: "truncated to k", query: []float32{0.1, 1}, k: 1, want: []string{"north"}},
		{name: "k larger than collection", query: []float32{1, 1}, k: 10, want: []string{"northeast", "east", "north"}},
		{name: "filter by source", query: []float32{1, 0}, k: 3, filters: map[string]any{"source": "a.pdf"}, want: []string{"east", "north"}},
		{name: "filter by int index", query: []float32{1, 0}, k: 3, filters: map[string]any{"chunk_index": 0}, want: []string{"east", "northeast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(ctx, "docs", tt.query, tt.k, tt.filters)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(results) != len(tt.want) {
				t.Fatalf("Search() returned %d results, want %d", len(results), len(tt.want))
			}
			for i, id := range tt.want {
				if results[i].PointID != id {
					t.Errorf("Search()[%d] = %s, want %s", i, results[i].PointID, id)
				}
				if results[i].Text != id {
					t.Errorf("Search()[%d].Text = %q, want %q", i, results[i].Text, id)
				}
			}
			for i := 1; i < len(results); i++ {
				if results[i].Score > results[i-1].Score {
					t.Errorf("results not sorted: %v > %v", results[i].Score, results[i-1].Score)
				}
			}
		})
	}
}

func TestSQLiteStore_SearchTiesKeepInsertionOrder(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 2)
	ctx := context.Background()

	var points []Point
	for i := 0; i < 5; i++ {
		points = append(points, Point{ID: fmt.Sprintf("p%d", i), Vec: []float32{1, 1}, Text: fmt.Sprintf("t%d", i)})
	}
	if err := store.Upsert(ctx, "docs", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	for run := 0; run < 3; run++ {
		results, err := store.Search(ctx, "docs", []float32{2, 2}, 3, nil)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		for i, r := range results {
			if want := fmt.Sprintf("p%d", i); r.PointID != want {
				t.Errorf("run %d: result %d = %s, want %s", run, i, r.PointID, want)
			}
		}
	}
}

func TestSQLiteStore_SearchEmptyCollection(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 2)

	results, err := store.Search(context.Background(), "docs", []float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("Search() on empty collection = %v, want empty non-nil slice", results)
	}
}

func TestSQLiteStore_SearchInvalidK(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 2)

	_, err := store.Search(context.Background(), "docs", []float32{1, 0}, 0, nil)
	if !errors.Is(err, ErrInvalidK) {
		t.Errorf("Search(k=0) error = %v, want ErrInvalidK", err)
	}
}

func TestSQLiteStore_UpsertRejectsWrongVectorSize(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 3)
	ctx := context.Background()

	err := store.Upsert(ctx, "docs", []Point{
		{ID: "ok", Vec: []float32{1, 2, 3}, Text: "ok"},
		{ID: "bad", Vec: []float32{1, 2}, Text: "bad"},
	})
	if err == nil {
		t.Fatal("Upsert() with wrong vector size expected error, got nil")
	}

	info, err := store.CollectionInfo(ctx, "docs")
	if err != nil {
		t.Fatalf("CollectionInfo() error = %v", err)
	}
	if info.PointsCount != 0 {
		t.Errorf("PointsCount = %d, want 0 after rejected batch", info.PointsCount)
	}
}

func TestSQLiteStore_UpsertUnknownCollection(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 1)

	err := store.Upsert(context.Background(), "nope", []Point{{ID: "a", Vec: []float32{1}}})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Upsert() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_DeleteAndInfo(t *testing.T) {
	store := newTestSQLiteStore(t, "docs", 1)
	ctx := context.Background()

	if err := store.Upsert(ctx, "docs", []Point{
		{ID: "a", Vec: []float32{1}, Text: "a"},
		{ID: "b", Vec: []float32{1}, Text: "b"},
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Delete(ctx, "docs", []string{"a"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	info, err := store.CollectionInfo(ctx, "docs")
	if err != nil {
		t.Fatalf("CollectionInfo() error = %v", err)
	}
	if info.PointsCount != 1 || info.VectorSize != 1 {
		t.Errorf("CollectionInfo() = %+v, want 1 point of size 1", info)
	}
}

func TestSQLiteStore_ChunkStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := storagemocks.NewMockChunkStore(ctrl)
	store := NewSQLiteStore(chunks)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	chunks.EXPECT().ListByCollection(gomock.Any(), "docs").Return(nil, boom)
	if _, err := store.Search(ctx, "docs", []float32{1}, 1, nil); !errors.Is(err, boom) {
		t.Errorf("Search() error = %v, want wrapped %v", err, boom)
	}

	chunks.EXPECT().GetCollection(gomock.Any(), "docs").Return(&storage.CollectionRecord{Name: "docs", VectorSize: 1}, nil)
	chunks.EXPECT().InsertBatch(gomock.Any(), gomock.Len(1)).Return(boom)
	if err := store.Upsert(ctx, "docs", []Point{{ID: "a", Vec: []float32{1}}}); !errors.Is(err, boom) {
		t.Errorf("Upsert() error = %v, want wrapped %v", err, boom)
	}

	chunks.EXPECT().DeleteByIDs(gomock.Any(), []string{"a"}).Return(boom)
	if err := store.Delete(ctx, "docs", []string{"a"}); !errors.Is(err, boom) {
		t.Errorf("Delete() error = %v, want wrapped %v", err, boom)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{2, 4}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}
