package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DataKind names one family of auxiliary data published per sequence.
type DataKind string

const (
	KindDepth            DataKind = "depth"
	KindFogTransmittance DataKind = "fog_transmittance"
	KindRainDiff         DataKind = "rain_diff"
	KindRain             DataKind = "rain"

	// KindFog is generated locally and never downloaded.
	KindFog DataKind = "fog"
)

// Wildcard keys the data-kind entry used by sequences without their own entry.
const Wildcard = "*"

// Directory names of the local trees.
const (
	DatasetsDirName = "weather_datasets"
	DownloadDirName = "downloaded"
	RainyImageDir   = "rainy_image"
	RainMaskDir     = "rain_mask"
)

// Dataset describes one original dataset and the auxiliary data required for
// each of its sequences. A Dataset is immutable once built by NewDataset.
type Dataset struct {
	name         string
	originalRoot string
	outputRoot   string
	sequences    []string
	data         map[string][]DataKind
	transformer  ImageTransformer
}

// NewDataset validates that every sequence resolves to a non-empty set of data
// kinds, by exact entry or wildcard fallback. A nil transformer means Identity.
func NewDataset(name, originalRoot, outputRoot string, sequences []string, data map[string][]DataKind, t ImageTransformer) (*Dataset, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: dataset name is required", ErrConfig)
	}
	if len(sequences) == 0 {
		return nil, fmt.Errorf("%w: dataset %s declares no sequences", ErrConfig, name)
	}
	if t == nil {
		t = Identity{}
	}

	d := &Dataset{
		name:         name,
		originalRoot: originalRoot,
		outputRoot:   outputRoot,
		sequences:    slices.Clone(sequences),
		data:         make(map[string][]DataKind, len(data)),
		transformer:  t,
	}
	for k, v := range data {
		d.data[k] = slices.Clone(v)
	}

	for _, seq := range d.sequences {
		if _, err := d.KindsFor(seq); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Name is the short dataset name, e.g. "kitti".
func (d *Dataset) Name() string { return d.name }

// Prefix is the remote and on-disk name of the weather variant, e.g. "weather_kitti".
func (d *Dataset) Prefix() string { return "weather_" + d.name }

// OriginalRoot is the root of the clean dataset tree.
func (d *Dataset) OriginalRoot() string { return d.originalRoot }

// OutputRoot is the directory that receives downloads and generated trees.
func (d *Dataset) OutputRoot() string { return d.outputRoot }

// Sequences returns the sequences in processing order.
func (d *Dataset) Sequences() []string { return slices.Clone(d.sequences) }

// Transformer returns the geometry normalization applied to original images.
func (d *Dataset) Transformer() ImageTransformer { return d.transformer }

// KindsFor resolves the data kinds of a sequence: its own entry, else the wildcard.
func (d *Dataset) KindsFor(sequence string) ([]DataKind, error) {
	kinds, ok := d.data[sequence]
	if !ok {
		kinds, ok = d.data[Wildcard]
	}
	if !ok || len(kinds) == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no data kinds for sequence %q", ErrConfig, d.name, sequence)
	}
	return slices.Clone(kinds), nil
}

// HasKind reports whether the sequence requires the given kind.
func (d *Dataset) HasKind(sequence string, kind DataKind) bool {
	kinds, err := d.KindsFor(sequence)
	if err != nil {
		return false
	}
	return slices.Contains(kinds, kind)
}

// WildcardHasKind reports whether the wildcard entry lists the given kind.
func (d *Dataset) WildcardHasKind(kind DataKind) bool {
	return slices.Contains(d.data[Wildcard], kind)
}

// Restrict returns a copy limited to the given sequences, which must all be
// declared by d. An empty list returns d unchanged.
func (d *Dataset) Restrict(sequences []string) (*Dataset, error) {
	if len(sequences) == 0 {
		return d, nil
	}
	for _, seq := range sequences {
		if !slices.Contains(d.sequences, seq) {
			return nil, fmt.Errorf("%w: dataset %s has no sequence %q (known: %s)",
				ErrConfig, d.name, seq, strings.Join(d.sequences, ", "))
		}
	}
	return NewDataset(d.name, d.originalRoot, d.outputRoot, sequences, d.data, d.transformer)
}

// SequenceSlug flattens a sequence into a single file-name component.
func SequenceSlug(sequence string) string {
	return strings.ReplaceAll(sequence, "/", "_")
}

// ArchiveName is the remote file name of one (sequence, kind) archive.
func (d *Dataset) ArchiveName(sequence string, kind DataKind) string {
	return fmt.Sprintf("%s_%s_%s.zip", d.Prefix(), SequenceSlug(sequence), kind)
}

// ManifestName is the remote file name of the checksum manifest.
func (d *Dataset) ManifestName() string {
	return d.Prefix() + "_checksums.txt"
}

// Archives lists every archive required by the dataset, in sequence order and
// then in declared kind order.
func (d *Dataset) Archives() ([]string, error) {
	var names []string
	for _, seq := range d.sequences {
		kinds, err := d.KindsFor(seq)
		if err != nil {
			return nil, err
		}
		for _, k := range kinds {
			names = append(names, d.ArchiveName(seq, k))
		}
	}
	return names, nil
}

// DatasetsDir is the extraction root shared by all datasets.
func (d *Dataset) DatasetsDir() string {
	return filepath.Join(d.outputRoot, DatasetsDirName)
}

// DownloadDir is the staging directory for archives and the manifest.
func (d *Dataset) DownloadDir() string {
	return filepath.Join(d.outputRoot, DownloadDirName)
}

// SequenceDir is the auxiliary tree of one sequence.
func (d *Dataset) SequenceDir(sequence string) string {
	return filepath.Join(d.DatasetsDir(), d.Prefix(), filepath.FromSlash(sequence))
}

// KindDir is the directory holding the levels of one kind for a sequence.
func (d *Dataset) KindDir(sequence string, kind DataKind) string {
	return filepath.Join(d.SequenceDir(sequence), string(kind))
}

// OriginalSequenceDir is the clean image tree of one sequence.
func (d *Dataset) OriginalSequenceDir(sequence string) string {
	return filepath.Join(d.originalRoot, filepath.FromSlash(sequence))
}

// CheckOriginals verifies that the original root and every sequence directory
// exist.
func (d *Dataset) CheckOriginals() error {
	if !isDir(d.originalRoot) {
		return fmt.Errorf("%w: original %s dataset directory does not exist: %s", ErrConfig, d.name, d.originalRoot)
	}
	for _, seq := range d.sequences {
		if !isDir(d.OriginalSequenceDir(seq)) {
			return fmt.Errorf("%w: original %s dataset structure invalid, directory %s is missing; restrict sequences to skip it",
				ErrConfig, d.name, d.OriginalSequenceDir(seq))
		}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
