package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
)

// FogGenerator writes foggy images from fog transmittance maps.
type FogGenerator struct {
	generator
}

// NewFogGenerator creates a FogGenerator. A nil progress discards events.
func NewFogGenerator(logger *slog.Logger, metrics *observability.Metrics, progress observability.Progress) *FogGenerator {
	return &FogGenerator{newGenerator(domain.WeatherFog, observability.StageFog, logger, metrics, progress)}
}

// Generate composites every transmittance level of every sequence that ships
// fog data into <sequence>/fog/<level>/.
func (g *FogGenerator) Generate(ctx context.Context, d *domain.Dataset) (GenerateResult, error) {
	var res GenerateResult
	sequences := d.Sequences()

	for i, seq := range sequences {
		if !d.HasKind(seq, domain.KindFogTransmittance) {
			g.logger.Info("no fog data in sequence", "dataset", d.Name(), "sequence", seq)
			continue
		}

		dir := d.KindDir(seq, domain.KindFogTransmittance)
		if !isDir(dir) {
			return res, fmt.Errorf("%w: fog_transmittance directory does not exist: %s", domain.ErrConfig, dir)
		}
		levels, err := domain.ListLevels(dir)
		if err != nil {
			return res, err
		}

		for j, level := range levels {
			g.logger.Info("generating fog", "dataset", d.Name(),
				"sequence", seq, "sequence_index", i+1, "sequences", len(sequences),
				"level", level, "level_index", j+1, "levels", len(levels))

			c := domain.NewFogCorrespondence(d, seq, level)
			lr, err := g.level(ctx, d, c, domain.CompositeFog, acceptPair)
			res.add(lr)
			if err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func acceptPair(domain.ImagePair) (bool, error) { return true, nil }
