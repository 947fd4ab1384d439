// Package datasets declares the datasets the weather archives are published
// for, and loads additional declarations from YAML.
package datasets

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/weather-augment/internal/domain"
	"gopkg.in/yaml.v3"
)

// Spec is the declaration of one dataset. Root optionally names the
// directory holding its original images.
type Spec struct {
	Name      string              `yaml:"name"`
	Root      string              `yaml:"root,omitempty"`
	Sequences []string            `yaml:"sequences"`
	Data      map[string][]string `yaml:"data"`
	Transform TransformSpec       `yaml:"transform"`
}

// TransformSpec selects the geometry normalization of original images.
type TransformSpec struct {
	Kind   string `yaml:"kind"` // crop, resize or identity
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

// File is the top-level structure of a dataset declaration file.
type File struct {
	Datasets []Spec `yaml:"datasets"`
}

// Kitti ships rainy images directly, so rain needs no compositing.
var Kitti = Spec{
	Name: "kitti",
	Sequences: []string{
		"data_object/training/image_2",
		"raw_data/2011_09_26/2011_09_26_drive_0032_sync/image_02/data",
		"raw_data/2011_09_26/2011_09_26_drive_0056_sync/image_02/data",
	},
	Data: map[string][]string{
		domain.Wildcard: {"depth", "fog_transmittance", "rain"},
	},
	Transform: TransformSpec{Kind: "crop", Width: 1216, Height: 352},
}

// Cityscapes publishes differential rain layers; the validation split has rain only.
var Cityscapes = Spec{
	Name:      "cityscapes",
	Sequences: []string{"leftImg8bit/train", "leftImg8bit/val"},
	Data: map[string][]string{
		domain.Wildcard:   {"depth", "fog_transmittance", "rain_diff"},
		"leftImg8bit/val": {"rain_diff"},
	},
	Transform: TransformSpec{Kind: "resize", Width: 1024, Height: 512},
}

var knownKinds = []domain.DataKind{
	domain.KindDepth, domain.KindFogTransmittance, domain.KindRainDiff, domain.KindRain,
}

// Transformer builds the image transformer this declaration selects.
func (t TransformSpec) Transformer() (domain.ImageTransformer, error) {
	switch strings.ToLower(t.Kind) {
	case "", "identity":
		return domain.Identity{}, nil
	case "crop":
		if t.Width <= 0 || t.Height <= 0 {
			return nil, fmt.Errorf("%w: crop needs positive width and height", domain.ErrConfig)
		}
		return domain.CenterCrop{Width: t.Width, Height: t.Height}, nil
	case "resize":
		if t.Width <= 0 || t.Height <= 0 {
			return nil, fmt.Errorf("%w: resize needs positive width and height", domain.ErrConfig)
		}
		return domain.Resize{Width: t.Width, Height: t.Height}, nil
	default:
		return nil, fmt.Errorf("%w: unknown transform %q", domain.ErrConfig, t.Kind)
	}
}

// Build binds the declaration to local paths. A non-empty sequences list restricts
// processing to those declared sequences.
func (s Spec) Build(originalRoot, outputRoot string, sequences []string) (*domain.Dataset, error) {
	tr, err := s.Transform.Transformer()
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", s.Name, err)
	}

	data := make(map[string][]domain.DataKind, len(s.Data))
	for seq, kinds := range s.Data {
		for _, k := range kinds {
			kind := domain.DataKind(k)
			if !slices.Contains(knownKinds, kind) {
				return nil, fmt.Errorf("%w: dataset %s: unknown data kind %q", domain.ErrConfig, s.Name, k)
			}
			data[seq] = append(data[seq], kind)
		}
	}

	d, err := domain.NewDataset(s.Name, originalRoot, outputRoot, s.Sequences, data, tr)
	if err != nil {
		return nil, err
	}
	return d.Restrict(sequences)
}

// Catalog indexes dataset declarations by name.
type Catalog struct {
	specs map[string]Spec
	order []string
}

// NewCatalog holds the built-in datasets followed by extra ones. An extra
// declaration replaces a built-in of the same name.
func NewCatalog(extra ...Spec) *Catalog {
	c := &Catalog{specs: make(map[string]Spec)}
	for _, s := range append([]Spec{Cityscapes, Kitti}, extra...) {
		if _, ok := c.specs[s.Name]; !ok {
			c.order = append(c.order, s.Name)
		}
		c.specs[s.Name] = s
	}
	return c
}

// Names lists the catalog in declaration order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.order)
}

// Lookup returns the declaration registered under name.
func (c *Catalog) Lookup(name string) (Spec, error) {
	s, ok := c.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: unknown dataset %q (known: %s)", domain.ErrConfig, name, strings.Join(c.order, ", "))
	}
	return s, nil
}

// LoadFile reads dataset declarations from a YAML file.
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read datasets file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse datasets file %s: %w", domain.ErrConfig, path, err)
	}
	for i, s := range f.Datasets {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: datasets file %s: entry %d has no name", domain.ErrConfig, path, i)
		}
	}
	return f.Datasets, nil
}
