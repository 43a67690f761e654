// Package inbox ingests documents dropped into a directory.
package inbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"legalrag/internal/contextutil"
	"legalrag/internal/service"
	"legalrag/internal/storage"
)

// DefaultDebounce is how long a file must stay unchanged before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Ledger remembers the version of each inbox file that was last ingested.
type Ledger interface {
	GetFile(ctx context.Context, path string) (*storage.InboxFileRecord, error)
	PutFile(ctx context.Context, rec *storage.InboxFileRecord) error
}

// Inbox ingests the supported files of a directory tree through the document service.
// A file is ingested once per distinct content; a changed file replaces the
// chunks of its previous version.
type Inbox struct {
	root      string
	docs      service.DocumentService
	ledger    Ledger
	supported func(filename string) bool
	debounce  time.Duration

	// Serializes ingestFile so a scan and the watcher never ingest one version twice
	mu sync.Mutex
}

// New creates an Inbox rooted at dir. supported filters files by name.
func New(dir string, docs service.DocumentService, ledger Ledger, supported func(filename string) bool) (*Inbox, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access inbox directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox path %s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inbox directory: %w", err)
	}

	return &Inbox{
		root:      abs,
		docs:      docs,
		ledger:    ledger,
		supported: supported,
		debounce:  DefaultDebounce,
	}, nil
}

// Root returns the absolute inbox directory.
func (i *Inbox) Root() string { return i.root }

// Scan ingests every supported file in the inbox that is new or has changed
// since it was last ingested. A failing file does not stop the scan; all
// failures are returned joined.
func (i *Inbox) Scan(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := i.ScanDir(ctx)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "inbox scan started", "root", i.root, "files", len(files))

	var errs []error
	ingested, unchanged := 0, 0
	for _, f := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		done, err := i.ingestFile(ctx, f.AbsPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if done {
			ingested++
		} else {
			unchanged++
		}
	}

	logger.InfoContext(ctx, "inbox scan finished", "ingested", ingested, "unchanged", unchanged, "failed", len(errs))
	return errors.Join(errs...)
}

// Watch ingests files as they are created or modified until ctx is done.
// New subdirectories are watched as they appear.
func (i *Inbox) Watch(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := i.addDirs(watcher, i.root); err != nil {
		return err
	}
	logger.InfoContext(ctx, "watching inbox", "root", i.root)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok && t.Stop() {
			wg.Done()
		}
		wg.Add(1)
		var t *time.Timer
		t = time.AfterFunc(i.debounce, func() {
			defer wg.Done()
			mu.Lock()
			if pending[path] == t {
				delete(pending, path)
			}
			mu.Unlock()
			if _, err := i.ingestFile(ctx, path); err != nil {
				logger.ErrorContext(ctx, "failed to ingest inbox file", "path", path, "error", err)
			}
		})
		pending[path] = t
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if isHidden(filepath.Base(event.Name)) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if err := i.addDirs(watcher, event.Name); err != nil {
					logger.WarnContext(ctx, "failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}
			if i.supported(event.Name) {
				schedule(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "inbox watcher error", "error", err)
		}
	}
}

// addDirs watches dir and every non-hidden directory below it.
func (i *Inbox) addDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// ingestFile uploads path unless the ledger shows this content was already
// ingested, and reports whether it uploaded. The chunks of a replaced version
// are removed after the new ones are stored.
func (i *Inbox) ingestFile(ctx context.Context, path string) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	i.mu.Lock()
	defer i.mu.Unlock()

	rel, err := filepath.Rel(i.root, path)
	if err != nil {
		return false, fmt.Errorf("failed to compute relative path for %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	prev, err := i.ledger.GetFile(ctx, rel)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("failed to look up %s: %w", rel, err)
	}
	if prev != nil && prev.Size == info.Size() && prev.ModTime.Equal(info.ModTime()) {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if prev != nil && prev.Hash == hash {
		// Touched but identical; remember the new stat so later scans skip the read
		prev.Size, prev.ModTime = info.Size(), info.ModTime()
		if err := i.ledger.PutFile(ctx, prev); err != nil {
			return false, fmt.Errorf("failed to record %s: %w", rel, err)
		}
		return false, nil
	}

	resp, err := i.docs.Upload(ctx, service.UploadRequest{
		Filename: filepath.Base(path),
		Data:     data,
	})
	if err != nil {
		return false, fmt.Errorf("failed to ingest %s: %w", path, err)
	}

	rec := &storage.InboxFileRecord{
		Path:     rel,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Hash:     hash,
		PointIDs: resp.PointIDs,
	}
	if err := i.ledger.PutFile(ctx, rec); err != nil {
		return true, fmt.Errorf("failed to record %s: %w", rel, err)
	}

	if prev != nil && len(prev.PointIDs) > 0 {
		if err := i.docs.Remove(ctx, prev.PointIDs); err != nil {
			return true, fmt.Errorf("failed to remove previous version of %s: %w", rel, err)
		}
		logger.InfoContext(ctx, "inbox file replaced", "path", rel, "removed_chunks", len(prev.PointIDs))
	}

	logger.InfoContext(ctx, "inbox file ingested", "path", rel, "chunks", resp.Chunks, "extracted_chars", resp.ExtractedChars)
	return true, nil
}
