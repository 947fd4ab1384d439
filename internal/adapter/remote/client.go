// Package remote downloads manifests and archives over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
	"github.com/google/renameio"
)

// Client fetches whole remote files to local storage.
type Client struct {
	httpClient *http.Client
	progress   observability.Progress
	logger     *slog.Logger
}

// NewClient creates a download client. The timeout bounds a whole transfer.
func NewClient(timeout time.Duration, progress observability.Progress, logger *slog.Logger) *Client {
	if progress == nil {
		progress = observability.NopProgress{}
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		progress: progress,
		logger:   logger,
	}
}

// Fetch downloads url to dest and returns the number of bytes written. The body
// is staged in a temporary file beside dest and renamed into place only after
// a complete transfer. Every failure wraps domain.ErrTransfer.
func (c *Client) Fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %w", domain.ErrTransfer, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %w", domain.ErrTransfer, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: get %s: status %d: %s", domain.ErrTransfer, url, resp.StatusCode, body)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", domain.ErrTransfer, dir, err)
	}
	pf, err := renameio.TempFile(dir, dest)
	if err != nil {
		return 0, fmt.Errorf("%w: stage %s: %w", domain.ErrTransfer, dest, err)
	}
	defer pf.Cleanup() //nolint:errcheck // no-op once replaced

	c.logger.Debug("download started", "url", url, "dest", dest, "size", resp.ContentLength)

	body := &progressReader{
		r:     resp.Body,
		total: resp.ContentLength,
		name:  path.Base(req.URL.Path),
		sink:  c.progress,
	}
	n, err := io.Copy(pf, body)
	if err != nil {
		return n, fmt.Errorf("%w: download %s: %w", domain.ErrTransfer, url, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return n, fmt.Errorf("%w: download %s: got %d of %d bytes", domain.ErrTransfer, url, n, resp.ContentLength)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("%w: write %s: %w", domain.ErrTransfer, dest, err)
	}

	c.logger.Debug("download finished", "url", url, "bytes", n)
	return n, nil
}

// progressReader reports cumulative bytes read.
type progressReader struct {
	r     io.Reader
	total int64
	done  int64
	name  string
	sink  observability.Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.sink.Observe(observability.ProgressEvent{
			Stage: observability.StageDownload,
			Name:  p.name,
			Done:  p.done,
			Total: p.total,
		})
	}
	return n, err
}
