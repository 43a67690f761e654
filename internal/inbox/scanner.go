package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a supported file found in the inbox.
type ScannedFile struct {
	RelPath string // Relative path from the inbox root, with forward slashes
	AbsPath string // Absolute file path
}

// ScanDir walks the inbox and returns every supported file, skipping hidden
// files and directories.
func (i *Inbox) ScanDir(ctx context.Context) ([]ScannedFile, error) {
	var scannedFiles []ScannedFile

	err := filepath.WalkDir(i.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isHidden(d.Name()) && path != i.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !i.supported(path) {
			return nil
		}

		relPath, err := filepath.Rel(i.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scannedFiles = append(scannedFiles, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return scannedFiles, fmt.Errorf("failed to scan inbox %s: %w", i.root, err)
	}

	return scannedFiles, nil
}

// isHidden reports dotfiles and editor temp files such as "~$lease.docx".
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~")
}
