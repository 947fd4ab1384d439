package pipeline_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/couchcryptid/weather-augment/internal/adapter/imagefile"
	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// remoteHost serves a fixed set of files and counts requests per file.
type remoteHost struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

func newRemoteHost(t *testing.T, files map[string][]byte) *remoteHost {
	t.Helper()
	h := &remoteHost{files: files, hits: make(map[string]int)}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		h.mu.Lock()
		h.hits[name]++
		body, ok := h.files[name]
		h.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body) //nolint:errcheck
	}))
	t.Cleanup(h.Close)
	return h
}

func (h *remoteHost) BaseURL() string { return h.URL + "/" }

func (h *remoteHost) Hits(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[name]
}

func (h *remoteHost) TotalHits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, v := range h.hits {
		n += v
	}
	return n
}

func zipBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	slices.Sort(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write(entries[n])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sha(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, imagefile.SavePNG(path, img))
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func uniformRGB(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pixelAt(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	img, err := imagefile.Load(path)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// toyDataset declares one sequence "city" with the given kinds below fresh
// original and output roots.
func toyDataset(t *testing.T, kinds ...domain.DataKind) *domain.Dataset {
	t.Helper()
	original := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(original, "city"), 0o755))
	d, err := domain.NewDataset("toy", original, t.TempDir(), []string{"city"},
		map[string][]domain.DataKind{domain.Wildcard: kinds}, domain.Identity{})
	require.NoError(t, err)
	return d
}
