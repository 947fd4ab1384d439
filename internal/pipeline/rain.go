package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/weather-augment/internal/adapter/imagefile"
	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
)

// RainGenerator writes rainy images from differential rain layers.
type RainGenerator struct {
	generator
}

// NewRainGenerator creates a RainGenerator. A nil progress discards events.
func NewRainGenerator(logger *slog.Logger, metrics *observability.Metrics, progress observability.Progress) *RainGenerator {
	return &RainGenerator{newGenerator(domain.WeatherRain, observability.StageRain, logger, metrics, progress)}
}

// Generate applies every rain_diff level of every sequence, copies the rain
// masks alongside, and removes the consumed rain_diff tree of each sequence.
// Datasets whose archives already carry rainy images need no work.
func (g *RainGenerator) Generate(ctx context.Context, d *domain.Dataset) (GenerateResult, error) {
	var res GenerateResult

	switch {
	case d.WildcardHasKind(domain.KindRainDiff):
	case d.WildcardHasKind(domain.KindRain):
		g.logger.Info("rainy images are shipped ready-made, nothing to generate", "dataset", d.Name())
		return res, nil
	default:
		return res, fmt.Errorf("%w: dataset %s provides no rain data", domain.ErrConfig, d.Name())
	}

	sequences := d.Sequences()
	for i, seq := range sequences {
		diffDir := d.KindDir(seq, domain.KindRainDiff)
		if !isDir(diffDir) {
			if rainDir := d.KindDir(seq, domain.KindRain); isDir(rainDir) {
				g.logger.Info("rain already generated, skipping", "dataset", d.Name(), "sequence", seq, "path", rainDir)
				continue
			}
			return res, fmt.Errorf("%w: rain_diff directory does not exist: %s", domain.ErrConfig, diffDir)
		}

		levels, err := domain.ListLevels(diffDir)
		if err != nil {
			return res, err
		}
		for j, level := range levels {
			g.logger.Info("generating rain", "dataset", d.Name(),
				"sequence", seq, "sequence_index", i+1, "sequences", len(sequences),
				"level", level, "level_index", j+1, "levels", len(levels))

			c := domain.NewRainCorrespondence(d, seq, level)
			lr, err := g.level(ctx, d, c, domain.CompositeRain, g.copyMask)
			res.add(lr)
			if err != nil {
				return res, err
			}
		}

		if err := os.RemoveAll(diffDir); err != nil {
			return res, fmt.Errorf("remove %s: %w", diffDir, err)
		}
		g.logger.Info("rain_diff removed", "dataset", d.Name(), "sequence", seq)
	}
	return res, nil
}

// copyMask copies the rain mask of a pair byte for byte. A pair without a mask
// is skipped.
func (g *RainGenerator) copyMask(pair domain.ImagePair) (bool, error) {
	if !imagefile.Exists(pair.MaskSource) {
		g.logger.Warn("rain mask missing, skipping", "path", pair.MaskSource, "error", domain.ErrCorrespondence)
		return false, nil
	}
	if err := imagefile.CopyFile(pair.MaskSource, pair.MaskOutput); err != nil {
		return false, err
	}
	return true, nil
}
