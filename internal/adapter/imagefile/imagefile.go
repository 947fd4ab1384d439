// Package imagefile reads dataset images and writes generated ones atomically.
package imagefile

import (
	"fmt"
	"image"
	_ "image/jpeg" // original datasets may ship JPEG frames
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// Load decodes the PNG or JPEG image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// SavePNG encodes img as PNG at path, creating parent directories. Readers
// never observe a partially written file.
func SavePNG(path string, img image.Image) error {
	return writeAtomic(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

// CopyFile copies src to dst byte for byte, creating parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	return writeAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	pf, err := renameio.TempFile(dir, path)
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	defer pf.Cleanup() //nolint:errcheck // no-op once replaced

	if err := write(pf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
