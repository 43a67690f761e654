package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// InboxStore records which version of each inbox file has been ingested.
type InboxStore interface {
	// GetFile returns the record for path. Returns ErrNotFound if the file was never ingested.
	GetFile(ctx context.Context, path string) (*InboxFileRecord, error)
	// PutFile creates or replaces the record for rec.Path.
	PutFile(ctx context.Context, rec *InboxFileRecord) error
}

// InboxRepo implements InboxStore on the inbox_files table.
type InboxRepo struct {
	db *sql.DB
}

// NewInboxRepo creates a new InboxRepo.
func NewInboxRepo(db *sql.DB) *InboxRepo {
	return &InboxRepo{db: db}
}

// GetFile returns the record for path. Returns ErrNotFound if not found.
func (r *InboxRepo) GetFile(ctx context.Context, path string) (*InboxFileRecord, error) {
	var (
		rec     InboxFileRecord
		modTime int64
		ids     string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT path, size, mod_time, hash, point_ids, ingested_at FROM inbox_files WHERE path = ?",
		path,
	).Scan(&rec.Path, &rec.Size, &modTime, &rec.Hash, &ids, &rec.IngestedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query inbox file: %w", err)
	}

	rec.ModTime = time.Unix(0, modTime)
	if err := json.Unmarshal([]byte(ids), &rec.PointIDs); err != nil {
		return nil, fmt.Errorf("failed to decode point ids for %s: %w", path, err)
	}
	return &rec, nil
}

// PutFile creates or replaces the record for rec.Path.
func (r *InboxRepo) PutFile(ctx context.Context, rec *InboxFileRecord) error {
	if rec.Path == "" {
		return errors.New("inbox file path is required")
	}

	ids := rec.PointIDs
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode point ids for %s: %w", rec.Path, err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO inbox_files (path, size, mod_time, hash, point_ids)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			hash = excluded.hash,
			point_ids = excluded.point_ids,
			ingested_at = CURRENT_TIMESTAMP`,
		rec.Path, rec.Size, rec.ModTime.UnixNano(), rec.Hash, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("failed to save inbox file %s: %w", rec.Path, err)
	}
	return nil
}
