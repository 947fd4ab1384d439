package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
)

// Fetcher downloads a remote file to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// Verifier compares a local file against an expected SHA-256 digest.
type Verifier interface {
	Verify(ctx context.Context, path, expected string) (bool, error)
}

// Extractor expands an archive below a directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) (int, error)
}

// AcquireResult counts what one acquisition did.
type AcquireResult struct {
	Archives   int
	Downloaded int
	Reused     int
	Mismatches int
}

// Acquirer downloads, verifies, and extracts every archive a dataset needs.
type Acquirer struct {
	baseURL   string
	fetcher   Fetcher
	verifier  Verifier
	extractor Extractor
	cleanup   bool
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAcquirer creates an Acquirer fetching from baseURL, which must end in "/".
// With cleanup set, archives and the manifest are deleted once extracted.
func NewAcquirer(baseURL string, f Fetcher, v Verifier, x Extractor, cleanup bool, logger *slog.Logger, metrics *observability.Metrics) *Acquirer {
	return &Acquirer{
		baseURL:   baseURL,
		fetcher:   f,
		verifier:  v,
		extractor: x,
		cleanup:   cleanup,
		logger:    logger,
		metrics:   metrics,
	}
}

// Acquire makes the auxiliary tree of d available below its datasets directory.
// The original dataset layout is checked before any network activity.
func (a *Acquirer) Acquire(ctx context.Context, d *domain.Dataset) (AcquireResult, error) {
	var res AcquireResult

	if err := d.CheckOriginals(); err != nil {
		return res, err
	}
	archives, err := d.Archives()
	if err != nil {
		return res, err
	}
	res.Archives = len(archives)

	for _, dir := range []string{d.DownloadDir(), d.DatasetsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	manifestPath := filepath.Join(d.DownloadDir(), d.ManifestName())
	manifest, err := a.fetchManifest(ctx, d.ManifestName(), manifestPath)
	if err != nil {
		return res, err
	}

	for i, name := range archives {
		a.logger.Info("acquiring archive", "dataset", d.Name(), "archive", name, "index", i+1, "total", len(archives))
		if err := a.acquireOne(ctx, d, manifest, name, &res); err != nil {
			return res, err
		}
	}

	if a.cleanup {
		a.removeStaging(manifestPath, d.DownloadDir())
	}
	return res, nil
}

func (a *Acquirer) fetchManifest(ctx context.Context, name, dest string) (domain.Manifest, error) {
	n, err := a.fetcher.Fetch(ctx, a.baseURL+name, dest)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrManifest, name, err)
	}
	a.metrics.BytesDownloaded.Add(float64(n))

	f, err := os.Open(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrManifest, dest, err)
	}
	defer f.Close()

	m, err := domain.ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	a.logger.Info("manifest loaded", "manifest", name, "entries", len(m))
	return m, nil
}

// acquireOne reuses a verified local copy or downloads once, then extracts.
// A fresh download is checked but never retried.
func (a *Acquirer) acquireOne(ctx context.Context, d *domain.Dataset, m domain.Manifest, name string, res *AcquireResult) error {
	local := filepath.Join(d.DownloadDir(), name)
	expected, listed := m.Expected(name)
	if !listed {
		a.logger.Warn("archive not listed in manifest, integrity will not be verified", "archive", name)
	}

	needed := true
	if fileExists(local) {
		if listed {
			ok, err := a.verifier.Verify(ctx, local, expected)
			if err != nil {
				return err
			}
			if ok {
				a.logger.Info("using previously downloaded archive", "archive", name)
				needed = false
				res.Reused++
				a.metrics.ArchivesReused.Inc()
			} else {
				a.logger.Warn("cached archive failed verification, downloading again",
					"archive", name, "error", domain.ErrChecksumMismatch)
				res.Mismatches++
				a.metrics.ChecksumMismatches.WithLabelValues("cached").Inc()
			}
		}
	}

	if needed {
		n, err := a.fetcher.Fetch(ctx, a.baseURL+name, local)
		if err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
		res.Downloaded++
		a.metrics.ArchivesDownloaded.Inc()
		a.metrics.BytesDownloaded.Add(float64(n))

		if listed {
			ok, err := a.verifier.Verify(ctx, local, expected)
			if err != nil {
				return err
			}
			if !ok {
				a.logger.Warn("downloaded archive failed verification, using it anyway",
					"archive", name, "error", domain.ErrChecksumMismatch)
				res.Mismatches++
				a.metrics.ChecksumMismatches.WithLabelValues("fresh").Inc()
			}
		}
	}

	entries, err := a.extractor.Extract(ctx, local, d.DatasetsDir())
	if err != nil {
		return err
	}
	a.metrics.EntriesExtracted.Add(float64(entries))
	a.logger.Info("archive extracted", "archive", name, "entries", entries)

	if a.cleanup {
		if err := os.Remove(local); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("remove archive failed", "archive", local, "error", err)
		}
	}
	return nil
}

func (a *Acquirer) removeStaging(manifestPath, dir string) {
	if err := os.Remove(manifestPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("remove manifest failed", "path", manifestPath, "error", err)
	}
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) == 0 {
		if err := os.Remove(dir); err != nil {
			a.logger.Warn("remove staging directory failed", "path", dir, "error", err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
