package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/weather-augment/internal/adapter/datasets"
	"github.com/couchcryptid/weather-augment/internal/config"
	"github.com/couchcryptid/weather-augment/internal/domain"
)

const allDatasets = "all"

// options holds command-line settings that have no environment equivalent.
type options struct {
	dataset string
	root    string
}

// parseArgs applies command-line flags on top of cfg. The dataset name may
// come before or after the flags.
func parseArgs(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var opts options
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		opts.dataset, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("weather-augment", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: weather-augment [all|kitti|cityscapes|<declared name>] [flags]")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.KittiRoot, "kitti-root", cfg.KittiRoot, "original KITTI directory")
	fs.StringVar(&cfg.CityscapesRoot, "cityscapes-root", cfg.CityscapesRoot, "original Cityscapes directory")
	fs.StringVar(&opts.root, "root", "", "original directory of the selected dataset")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory receiving downloads and generated images")
	fs.StringVar(&cfg.DatasetsFile, "datasets", cfg.DatasetsFile, "YAML file declaring additional datasets")
	fs.BoolVar(&cfg.Cleanup, "cleanup", cfg.Cleanup, "delete archives and the manifest once extracted")
	fs.BoolVar(&cfg.SkipDownload, "skip-download", cfg.SkipDownload, "generate from an already extracted tree")
	weather := fs.String("weather", strings.Join(cfg.Weathers, ","), "comma-separated weathers to generate (rain, fog)")
	sequence := fs.String("sequence", strings.Join(cfg.Sequences, ","), "comma-separated sequences to restrict processing to")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch rest := fs.Args(); {
	case len(rest) > 1:
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(rest[1:], " "))
	case len(rest) == 1 && opts.dataset != "":
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	case len(rest) == 1:
		opts.dataset = rest[0]
	}
	if opts.dataset == "" {
		fs.Usage()
		return opts, errors.New("dataset name is required")
	}

	cfg.Weathers = config.ParseList(*weather)
	cfg.Sequences = config.ParseList(*sequence)
	return opts, cfg.Validate()
}

// resolveDatasets builds the datasets selected by name, binding each to its
// original root. "all" selects every catalog entry in order.
func resolveDatasets(c *datasets.Catalog, cfg *config.Config, opts options) ([]*domain.Dataset, error) {
	names := []string{opts.dataset}
	if opts.dataset == allDatasets {
		if len(cfg.Sequences) > 0 {
			return nil, fmt.Errorf("%w: -sequence requires a single dataset", domain.ErrConfig)
		}
		if opts.root != "" {
			return nil, fmt.Errorf("%w: -root requires a single dataset", domain.ErrConfig)
		}
		names = c.Names()
	}

	out := make([]*domain.Dataset, 0, len(names))
	for _, name := range names {
		spec, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		root := originalRoot(cfg, opts, spec)
		if root == "" {
			return nil, fmt.Errorf("%w: no original directory given for dataset %s", domain.ErrConfig, name)
		}
		d, err := spec.Build(root, cfg.OutputDir, cfg.Sequences)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// originalRoot prefers -root, then the per-dataset setting, then the root
// given in the dataset's declaration.
func originalRoot(cfg *config.Config, opts options, spec datasets.Spec) string {
	if opts.root != "" {
		return opts.root
	}
	switch spec.Name {
	case datasets.Kitti.Name:
		if cfg.KittiRoot != "" {
			return cfg.KittiRoot
		}
	case datasets.Cityscapes.Name:
		if cfg.CityscapesRoot != "" {
			return cfg.CityscapesRoot
		}
	}
	return spec.Root
}

// loadCatalog returns the built-in datasets plus those declared in the
// configured datasets file.
func loadCatalog(cfg *config.Config) (*datasets.Catalog, error) {
	if cfg.DatasetsFile == "" {
		return datasets.NewCatalog(), nil
	}
	extra, err := datasets.LoadFile(cfg.DatasetsFile)
	if err != nil {
		return nil, err
	}
	return datasets.NewCatalog(extra...), nil
}
