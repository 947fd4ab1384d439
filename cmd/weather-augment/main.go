package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-augment/internal/adapter/archive"
	"github.com/couchcryptid/weather-augment/internal/adapter/checksum"
	httpadapter "github.com/couchcryptid/weather-augment/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-augment/internal/adapter/kafka"
	"github.com/couchcryptid/weather-augment/internal/adapter/remote"
	"github.com/couchcryptid/weather-augment/internal/config"
	"github.com/couchcryptid/weather-augment/internal/observability"
	"github.com/couchcryptid/weather-augment/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts, err := parseArgs(os.Args[1:], cfg, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	progress := observability.NewLogProgress(logger, 0)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	datasets, err := resolveDatasets(catalog, cfg, opts)
	if err != nil {
		logger.Error("failed to resolve datasets", "error", err)
		os.Exit(1)
	}

	acquirer := pipeline.NewAcquirer(cfg.BaseURL,
		remote.NewClient(cfg.HTTPTimeout, progress, logger),
		checksum.NewVerifier(progress),
		archive.NewExtractor(progress),
		cfg.Cleanup, logger, metrics)
	rain := pipeline.NewRainGenerator(logger, metrics, progress)
	fog := pipeline.NewFogGenerator(logger, metrics, progress)

	// Run events are published only when brokers are configured.
	var publisher pipeline.EventPublisher = pipeline.NopPublisher{}
	var kafkaPublisher *kafkaadapter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("run events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	runner := pipeline.NewRunner(acquirer, rain, fog, publisher, logger, metrics)

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, runner, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := runner.Run(ctx, datasets, pipeline.RunOptions{
		Weathers:     cfg.Weathers,
		SkipDownload: cfg.SkipDownload,
	})
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if runErr != nil {
		stop()
		cancel()
		os.Exit(1)
	}
}
