// Package archive unpacks downloaded zip archives into the auxiliary tree.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
	"github.com/klauspost/compress/zip"
)

// Extractor expands zip archives.
type Extractor struct {
	progress observability.Progress
}

// NewExtractor creates an Extractor reporting extracted entries to progress.
func NewExtractor(progress observability.Progress) *Extractor {
	if progress == nil {
		progress = observability.NopProgress{}
	}
	return &Extractor{progress: progress}
}

// Extract writes every entry of the zip at archivePath below destDir,
// preserving relative paths, and returns the number of entries. Corrupt
// archives and entries that would land outside destDir wrap domain.ErrArchive.
// The archive itself is left in place.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) (int, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", domain.ErrArchive, archivePath, err)
	}
	defer zr.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve %s: %w", domain.ErrArchive, destDir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", domain.ErrArchive, root, err)
	}

	name := filepath.Base(archivePath)
	total := int64(len(zr.File))
	for i, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := extractEntry(f, root); err != nil {
			return i, fmt.Errorf("%w: %s: %w", domain.ErrArchive, name, err)
		}
		e.progress.Observe(observability.ProgressEvent{
			Stage: observability.StageExtract, Name: name, Done: int64(i + 1), Total: total,
		})
	}
	return len(zr.File), nil
}

func extractEntry(f *zip.File, root string) error {
	target := filepath.Join(root, filepath.FromSlash(f.Name))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return fmt.Errorf("entry %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	return out.Close()
}
