package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/couchcryptid/weather-augment/internal/adapter/imagefile"
	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
)

// GenerateResult counts the images one generation pass produced or skipped.
type GenerateResult struct {
	Generated int
	Skipped   int
}

func (r *GenerateResult) add(o GenerateResult) {
	r.Generated += o.Generated
	r.Skipped += o.Skipped
}

// compositeFunc combines a normalized clean image with an auxiliary layer.
type compositeFunc func(clean, layer image.Image) (*image.NRGBA, error)

// generator holds what the fog and rain passes share.
type generator struct {
	weather  string
	stage    string
	logger   *slog.Logger
	metrics  *observability.Metrics
	progress observability.Progress
}

func newGenerator(weather, stage string, logger *slog.Logger, metrics *observability.Metrics, progress observability.Progress) generator {
	if progress == nil {
		progress = observability.NopProgress{}
	}
	return generator{weather: weather, stage: stage, logger: logger, metrics: metrics, progress: progress}
}

// level composites every artifact below one level directory. prepare runs
// before compositing and may veto a pair by returning false.
func (g generator) level(ctx context.Context, d *domain.Dataset, c domain.Correspondence, fn compositeFunc, prepare func(domain.ImagePair) (bool, error)) (GenerateResult, error) {
	var res GenerateResult

	files, err := domain.WalkArtifacts(c.LevelRoot)
	if err != nil {
		return res, err
	}
	name := c.Sequence + "/" + c.Level
	total := int64(len(files))

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s %s interrupted: %w", g.weather, name, err)
		}

		pair, err := c.Resolve(path)
		if err != nil {
			return res, err
		}

		if !imagefile.Exists(pair.Original) {
			g.skip(&res, "original image missing, skipping", pair.Original, domain.ErrCorrespondence)
		} else if ok, err := prepare(pair); err != nil {
			return res, err
		} else if ok {
			if err := g.composite(d, pair, fn); err != nil {
				return res, err
			}
			res.Generated++
			g.metrics.ImagesGenerated.WithLabelValues(g.weather).Inc()
		} else {
			res.Skipped++
			g.metrics.ImagesSkipped.WithLabelValues(g.weather).Inc()
		}

		g.progress.Observe(observability.ProgressEvent{Stage: g.stage, Name: name, Done: int64(i + 1), Total: total})
	}
	return res, nil
}

func (g generator) skip(res *GenerateResult, msg, path string, err error) {
	g.logger.Warn(msg, "path", path, "error", err)
	res.Skipped++
	g.metrics.ImagesSkipped.WithLabelValues(g.weather).Inc()
}

func (g generator) composite(d *domain.Dataset, pair domain.ImagePair, fn compositeFunc) error {
	clean, err := imagefile.Load(pair.Original)
	if err != nil {
		return err
	}
	clean = d.Transformer().TransformOriginalImage(clean)

	layer, err := imagefile.Load(pair.Source)
	if err != nil {
		return err
	}

	out, err := fn(clean, layer)
	if err != nil {
		return fmt.Errorf("%s %s: %w", g.weather, pair.Source, err)
	}
	return imagefile.SavePNG(pair.Output, out)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
