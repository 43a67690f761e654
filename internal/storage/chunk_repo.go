package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks legalrag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVectorSizeMismatch is returned when a collection exists with a different vector size.
	ErrVectorSizeMismatch = errors.New("vector size mismatch")
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// EnsureCollection creates the collection if missing.
	// Returns ErrVectorSizeMismatch if it exists with a different vector size.
	EnsureCollection(ctx context.Context, name string, vectorSize int) error
	// GetCollection gets a collection by name. Returns ErrNotFound if not found.
	GetCollection(ctx context.Context, name string) (*CollectionRecord, error)
	// InsertBatch writes all chunks in a single transaction.
	// A chunk whose ID already exists is overwritten in place and keeps its sequence.
	InsertBatch(ctx context.Context, chunks []ChunkRecord) error
	// ListByCollection returns every chunk in a collection in insertion order.
	ListByCollection(ctx context.Context, collection string) ([]ChunkRecord, error)
	// CountByCollection returns the number of chunks in a collection.
	CountByCollection(ctx context.Context, collection string) (int, error)
	// DeleteByIDs deletes chunks by ID. Unknown IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// EnsureCollection creates the collection if missing.
func (r *ChunkRepo) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	existing, err := r.GetCollection(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.VectorSize != vectorSize {
			return fmt.Errorf("%w: collection %q has size %d, expected %d", ErrVectorSizeMismatch, name, existing.VectorSize, vectorSize)
		}
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO collections (name, vector_size) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		name, vectorSize,
	)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// GetCollection gets a collection by name. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetCollection(ctx context.Context, name string) (*CollectionRecord, error) {
	var c CollectionRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT name, vector_size, created_at FROM collections WHERE name = ?",
		name,
	).Scan(&c.Name, &c.VectorSize, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	return &c, nil
}

// InsertBatch writes all chunks in a single transaction.
// Either every chunk is stored or none is.
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []ChunkRecord) (err error) {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (id, collection, text, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			text = excluded.text,
			embedding = excluded.embedding,
			metadata = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range chunks {
		c := &chunks[i]
		if c.ID == "" {
			return fmt.Errorf("chunk %d has empty id", i)
		}
		meta, mErr := encodeMetadata(c.Metadata)
		if mErr != nil {
			return fmt.Errorf("failed to encode metadata for chunk %s: %w", c.ID, mErr)
		}
		if _, err = stmt.ExecContext(ctx, c.ID, c.Collection, c.Text, EncodeEmbedding(c.Embedding), meta); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// ListByCollection returns every chunk in a collection ordered by insertion sequence.
// Returns an empty slice if the collection has no chunks (not an error).
func (r *ChunkRepo) ListByCollection(ctx context.Context, collection string) ([]ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seq, id, collection, text, embedding, metadata FROM chunks WHERE collection = ? ORDER BY seq",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []ChunkRecord
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// CountByCollection returns the number of chunks in a collection.
func (r *ChunkRepo) CountByCollection(ctx context.Context, collection string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection = ?", collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// DeleteByIDs deletes chunks by ID.
func (r *ChunkRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func scanChunk(s *sql.Rows) (*ChunkRecord, error) {
	var (
		c    ChunkRecord
		blob []byte
		meta string
	)
	if err := s.Scan(&c.Seq, &c.ID, &c.Collection, &c.Text, &blob, &meta); err != nil {
		return nil, fmt.Errorf("failed to scan chunk: %w", err)
	}

	emb, err := DecodeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedding for chunk %s: %w", c.ID, err)
	}
	c.Embedding = emb

	if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for chunk %s: %w", c.ID, err)
	}

	return &c, nil
}

func encodeMetadata(meta map[string]any) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeEmbedding packs a vector as little-endian float32 values.
func EncodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding reverses EncodeEmbedding.
func DecodeEmbedding(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
