package inbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrag/internal/extract"
	"legalrag/internal/indexer"
	"legalrag/internal/service"
	"legalrag/internal/storage"
	"legalrag/internal/vectorstore"
)

// letterEmbedder maps a text to the counts of 'a' and 'e', plus a constant
// component so no vector is zero.
type letterEmbedder struct{}

func (letterEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = []float32{
			float32(strings.Count(text, "a")),
			float32(strings.Count(text, "e")),
			1,
		}
	}
	return vecs, nil
}

type storeStack struct {
	inbox *Inbox
	store *vectorstore.SQLiteStore
}

func newStoreStack(t *testing.T, dir string) storeStack {
	t.Helper()
	ctx := context.Background()

	db, err := storage.New(filepath.Join(t.TempDir(), "legalrag.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.Migrate(db))

	store := vectorstore.NewSQLiteStore(storage.NewChunkRepo(db))
	require.NoError(t, store.EnsureCollection(ctx, "legal_docs", 3))

	chunker, err := indexer.NewChunker(40, 5)
	require.NoError(t, err)
	pipeline := indexer.NewPipeline(chunker, letterEmbedder{}, store, "legal_docs")
	docs := service.NewDocumentService(extract.PlainTextExtractor{}, pipeline, 0)

	in, err := New(dir, docs, storage.NewInboxRepo(db), supportedTextAndPDF)
	require.NoError(t, err)
	return storeStack{inbox: in, store: store}
}

func (s storeStack) points(t *testing.T) int {
	t.Helper()
	info, err := s.store.CollectionInfo(context.Background(), "legal_docs")
	require.NoError(t, err)
	return info.PointsCount
}

func TestInbox_Scan_RepeatedScansKeepOneCopy(t *testing.T) {
	dir := t.TempDir()
	lease := filepath.Join(dir, "lease.txt")
	writeFile(t, lease, "The tenant pays rent on the first day of each month.")

	stack := newStoreStack(t, dir)
	ctx := context.Background()

	require.NoError(t, stack.inbox.Scan(ctx))
	first := stack.points(t)
	require.Positive(t, first)

	for run := 2; run <= 3; run++ {
		require.NoError(t, stack.inbox.Scan(ctx), "scan %d", run)
	}
	assert.Equal(t, first, stack.points(t), "unchanged file must not add points")

	// A second, independent inbox over the same database behaves like a restart
	restarted, err := New(dir, stack.inbox.docs, stack.inbox.ledger, supportedTextAndPDF)
	require.NoError(t, err)
	require.NoError(t, restarted.Scan(ctx))
	assert.Equal(t, first, stack.points(t), "restart must not add points")
}

func TestInbox_Scan_ChangedFileReplacesChunks(t *testing.T) {
	dir := t.TempDir()
	lease := filepath.Join(dir, "lease.txt")
	writeFile(t, lease, "Old clause: rent is payable quarterly in advance to the landlord.")

	stack := newStoreStack(t, dir)
	ctx := context.Background()
	require.NoError(t, stack.inbox.Scan(ctx))

	writeFile(t, lease, "New clause: deposit returned.")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(lease, later, later))
	require.NoError(t, stack.inbox.Scan(ctx))

	results, err := stack.store.Search(ctx, "legal_docs", []float32{1, 1, 1}, 50, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotContains(t, r.Text, "Old clause", "chunks of the replaced version must be gone")
		assert.Equal(t, "lease.txt", r.Meta[indexer.MetaSource])
	}
	assert.Equal(t, len(results), stack.points(t))
}
