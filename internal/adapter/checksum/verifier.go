// Package checksum verifies downloaded archives against manifest digests.
package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/weather-augment/internal/observability"
)

// BlockSize is the read size used while hashing.
const BlockSize = 64 << 10

// Verifier computes streaming SHA-256 digests of local files.
type Verifier struct {
	progress observability.Progress
}

// NewVerifier creates a Verifier that reports hashed bytes to progress.
// A nil progress discards events.
func NewVerifier(progress observability.Progress) *Verifier {
	if progress == nil {
		progress = observability.NopProgress{}
	}
	return &Verifier{progress: progress}
}

// Sum returns the lowercase hex SHA-256 of the file at path.
func (v *Verifier) Sum(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	name := filepath.Base(path)
	h := sha256.New()
	buf := make([]byte, BlockSize)
	var done int64
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			done += int64(n)
			v.progress.Observe(observability.ProgressEvent{
				Stage: observability.StageChecksum, Name: name, Done: done, Total: info.Size(),
			})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether the digest of path equals expected (hex, any case).
func (v *Verifier) Verify(ctx context.Context, path, expected string) (bool, error) {
	sum, err := v.Sum(ctx, path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(sum, expected), nil
}
