package imagefile

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stevegt/readercomp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePNGAndLoad(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "deep", "dir", "out.png")
	require.NoError(t, SavePNG(path, img))
	assert.True(t, Exists(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, color.NRGBAModel.Convert(got.At(1, 1)))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode image")
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mask.png")
	data := bytes.Repeat([]byte{0, 1, 2, 255}, 5000)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	dst := filepath.Join(dir, "rain", "25mm", "rain_mask", "a", "mask.png")
	require.NoError(t, CopyFile(src, dst))

	a, err := os.Open(src)
	require.NoError(t, err)
	defer a.Close()
	b, err := os.Open(dst)
	require.NoError(t, err)
	defer b.Close()

	same, err := readercomp.Equal(a, b, 4096)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	require.Error(t, err)
	assert.False(t, Exists(filepath.Join(dir, "dst")))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "x")))
}
