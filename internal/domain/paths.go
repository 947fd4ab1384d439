package domain

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ArtifactPath is an auxiliary file decomposed into its layout components.
// SubPath is slash-separated and empty when the file sits directly in the level.
type ArtifactPath struct {
	Sequence string
	Kind     DataKind
	Level    string
	SubPath  string
	Filename string
}

// Tail joins SubPath and Filename with the OS separator.
func (a ArtifactPath) Tail() string {
	return filepath.Join(filepath.FromSlash(a.SubPath), a.Filename)
}

// ImagePair holds the paths that take part in compositing one image. The mask
// fields are only set for rain.
type ImagePair struct {
	Artifact   ArtifactPath
	Source     string // auxiliary artifact on disk
	Original   string
	Output     string
	MaskSource string
	MaskOutput string
}

// Correspondence maps files below one level directory of the auxiliary tree to
// the original dataset tree and to the generated output tree.
type Correspondence struct {
	Sequence string
	Kind     DataKind
	Level    string

	// LevelRoot is the directory whose sub-tree mirrors the original sequence.
	LevelRoot string
	// OriginalDir is <original root>/<sequence>.
	OriginalDir string
	// OutputDir receives <sub path>/<file>.
	OutputDir string

	// Rain only.
	MaskRoot      string
	MaskOutputDir string
}

// NewFogCorrespondence maps <seq>/fog_transmittance/<level>/... to <seq>/fog/<level>/...
func NewFogCorrespondence(d *Dataset, sequence, level string) Correspondence {
	return Correspondence{
		Sequence:    sequence,
		Kind:        KindFogTransmittance,
		Level:       level,
		LevelRoot:   filepath.Join(d.KindDir(sequence, KindFogTransmittance), level),
		OriginalDir: d.OriginalSequenceDir(sequence),
		OutputDir:   filepath.Join(d.KindDir(sequence, KindFog), level),
	}
}

// NewRainCorrespondence maps <seq>/rain_diff/<level>/rainy_image/... to
// <seq>/rain/<level>/rainy_image/... and the sibling rain_mask trees.
func NewRainCorrespondence(d *Dataset, sequence, level string) Correspondence {
	src := filepath.Join(d.KindDir(sequence, KindRainDiff), level)
	dst := filepath.Join(d.KindDir(sequence, KindRain), level)
	return Correspondence{
		Sequence:      sequence,
		Kind:          KindRainDiff,
		Level:         level,
		LevelRoot:     filepath.Join(src, RainyImageDir),
		OriginalDir:   d.OriginalSequenceDir(sequence),
		OutputDir:     filepath.Join(dst, RainyImageDir),
		MaskRoot:      filepath.Join(src, RainMaskDir),
		MaskOutputDir: filepath.Join(dst, RainMaskDir),
	}
}

// Parse splits a file below LevelRoot into its sub path and file name.
func (c Correspondence) Parse(path string) (ArtifactPath, error) {
	rel, err := filepath.Rel(c.LevelRoot, path)
	if err != nil {
		return ArtifactPath{}, fmt.Errorf("%s is not below %s: %w", path, c.LevelRoot, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ArtifactPath{}, fmt.Errorf("%s is not below %s", path, c.LevelRoot)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	return ArtifactPath{
		Sequence: c.Sequence,
		Kind:     c.Kind,
		Level:    c.Level,
		SubPath:  strings.Join(parts[:len(parts)-1], "/"),
		Filename: parts[len(parts)-1],
	}, nil
}

// Resolve derives every path paired with the auxiliary file at path.
func (c Correspondence) Resolve(path string) (ImagePair, error) {
	a, err := c.Parse(path)
	if err != nil {
		return ImagePair{}, err
	}
	tail := a.Tail()
	pair := ImagePair{
		Artifact: a,
		Source:   path,
		Original: filepath.Join(c.OriginalDir, tail),
		Output:   filepath.Join(c.OutputDir, tail),
	}
	if c.MaskRoot != "" {
		pair.MaskSource = filepath.Join(c.MaskRoot, tail)
		pair.MaskOutput = filepath.Join(c.MaskOutputDir, tail)
	}
	return pair, nil
}

// WalkArtifacts lists every .png file below root in lexical order.
func WalkArtifacts(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.IsDir() && strings.HasSuffix(de.Name(), ".png") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// ListLevels returns the level directories of a kind directory, sorted.
func ListLevels(kindDir string) ([]string, error) {
	entries, err := os.ReadDir(kindDir)
	if err != nil {
		return nil, fmt.Errorf("list levels in %s: %w", kindDir, err)
	}
	levels := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			levels = append(levels, e.Name())
		}
	}
	slices.Sort(levels)
	return levels, nil
}
