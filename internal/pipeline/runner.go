package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/weather-augment/internal/domain"
	"github.com/couchcryptid/weather-augment/internal/observability"
	"github.com/google/uuid"
)

// Acquisition makes the auxiliary data of a dataset available locally.
type Acquisition interface {
	Acquire(ctx context.Context, d *domain.Dataset) (AcquireResult, error)
}

// Generator writes one weather variant of a dataset.
type Generator interface {
	Generate(ctx context.Context, d *domain.Dataset) (GenerateResult, error)
}

// EventPublisher delivers a summary of each completed phase.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.RunEvent) error
}

// NopPublisher drops run events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.RunEvent) error { return nil }

// RunOptions selects the phases of a run.
type RunOptions struct {
	Weathers     []string
	SkipDownload bool
}

// Runner processes datasets one after another: download, then rain, then fog.
type Runner struct {
	acquirer  Acquisition
	rain      Generator
	fog       Generator
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu     sync.Mutex
	status domain.RunStatus
}

// NewRunner creates a Runner. A nil publisher discards events.
func NewRunner(a Acquisition, rain, fog Generator, pub EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Runner{
		acquirer:  a,
		rain:      rain,
		fog:       fog,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (r *Runner) CheckReadiness(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.status.Error != "":
		return errors.New(r.status.Error)
	case !r.status.Done:
		return errors.New("run has not completed yet")
	}
	return nil
}

// Status returns a snapshot of the current run.
func (r *Runner) Status() domain.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	s.Completed = slices.Clone(r.status.Completed)
	if s.Completed == nil {
		s.Completed = []string{}
	}
	return s
}

// Run processes datasets in order. Every original dataset layout is checked
// before any phase starts. The first fatal error aborts the run.
func (r *Runner) Run(ctx context.Context, datasets []*domain.Dataset, opts RunOptions) error {
	runID := uuid.NewString()
	r.setStatus(func(s *domain.RunStatus) { *s = domain.RunStatus{RunID: runID} })

	r.metrics.RunActive.Set(1)
	defer r.metrics.RunActive.Set(0)

	start := domain.Now()
	r.logger.Info("run started", "run_id", runID, "datasets", len(datasets), "weather", opts.Weathers, "skip_download", opts.SkipDownload)

	err := r.run(ctx, runID, datasets, opts)
	r.setStatus(func(s *domain.RunStatus) {
		s.Done = err == nil
		if err != nil {
			s.Error = err.Error()
		}
	})
	if err != nil {
		return err
	}

	r.logger.Info("run completed", "run_id", runID, "duration", domain.Since(start))
	return nil
}

func (r *Runner) run(ctx context.Context, runID string, datasets []*domain.Dataset, opts RunOptions) error {
	for _, d := range datasets {
		if err := d.CheckOriginals(); err != nil {
			return err
		}
	}

	for i, d := range datasets {
		r.logger.Info("processing dataset", "dataset", d.Name(), "index", i+1, "total", len(datasets))
		r.setStatus(func(s *domain.RunStatus) { s.Dataset = d.Name() })

		if !opts.SkipDownload {
			err := r.phase(ctx, runID, d, domain.PhaseDownload, func(ev *domain.RunEvent) error {
				res, err := r.acquirer.Acquire(ctx, d)
				ev.Archives, ev.Reused, ev.Mismatches = res.Archives, res.Reused, res.Mismatches
				return err
			})
			if err != nil {
				return err
			}
		}

		if slices.Contains(opts.Weathers, domain.WeatherRain) {
			if err := r.generate(ctx, runID, d, domain.PhaseRain, r.rain); err != nil {
				return err
			}
		}
		if slices.Contains(opts.Weathers, domain.WeatherFog) {
			if err := r.generate(ctx, runID, d, domain.PhaseFog, r.fog); err != nil {
				return err
			}
		}

		r.setStatus(func(s *domain.RunStatus) { s.Completed = append(s.Completed, d.Name()) })
	}
	return nil
}

func (r *Runner) generate(ctx context.Context, runID string, d *domain.Dataset, phase domain.Phase, g Generator) error {
	return r.phase(ctx, runID, d, phase, func(ev *domain.RunEvent) error {
		res, err := g.Generate(ctx, d)
		ev.Generated, ev.Skipped = res.Generated, res.Skipped
		return err
	})
}

// phase times fn, records its duration, and publishes its summary when it
// succeeds. Publishing failures are logged only.
func (r *Runner) phase(ctx context.Context, runID string, d *domain.Dataset, phase domain.Phase, fn func(ev *domain.RunEvent) error) error {
	r.setStatus(func(s *domain.RunStatus) { s.Phase = phase })
	r.logger.Info("phase started", "dataset", d.Name(), "phase", phase)

	ev := domain.RunEvent{
		RunID:     runID,
		Dataset:   d.Name(),
		Phase:     phase,
		Sequences: d.Sequences(),
		OutputDir: d.OutputRoot(),
		StartedAt: domain.Now(),
	}
	err := fn(&ev)
	ev.FinishedAt = domain.Now()
	elapsed := ev.FinishedAt.Sub(ev.StartedAt)
	r.metrics.PhaseDuration.WithLabelValues(string(phase)).Observe(elapsed.Seconds())

	if err != nil {
		return fmt.Errorf("%s %s: %w", d.Name(), phase, err)
	}

	r.logger.Info("phase completed", "dataset", d.Name(), "phase", phase,
		"duration", elapsed.Round(time.Millisecond),
		"archives", ev.Archives, "reused", ev.Reused, "checksum_mismatches", ev.Mismatches,
		"generated", ev.Generated, "skipped", ev.Skipped)

	if err := r.publisher.Publish(ctx, ev); err != nil {
		r.logger.Warn("publish run event failed", "dataset", d.Name(), "phase", phase, "error", err)
	}
	return nil
}

func (r *Runner) setStatus(fn func(s *domain.RunStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.status)
}
