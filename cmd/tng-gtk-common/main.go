package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/bootstrap"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) (err error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLoggerWithLevel(cfg.SlogLevel())

	logStartupInfo(ctx, logger, &cfg)

	if err = bootstrap.ValidateServiceConfig(&cfg); err != nil {
		return err
	}

	store, err := bootstrap.NewStatusStore(ctx, &cfg, logger)
	if err != nil {
		return fmt.Errorf("status store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close status store failed", "error", cerr)
		}
	}()

	bucket, err := bootstrap.OpenScratchBucket(ctx, cfg.Scratch.BucketURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := bucket.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close scratch bucket failed", "error", cerr)
		}
	}()

	metrics := bootstrap.NewMetricsSink(cfg.Observability.Metrics, logger)
	if client, ok := metrics.(*statsd.Client); ok {
		defer func() {
			if cerr := client.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close statsd: %w", cerr))
			}
		}()
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:  &cfg,
		Store:   store.Store,
		Bucket:  bucket,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting tng-gtk-common",
		"addr", cfg.HTTP.Addr,
		"store_backend", cfg.Store.Backend,
		"catalogue_configured", cfg.Upstream.CatalogueURL != "",
		"unpackager_configured", cfg.Upstream.UnpackagerURL != "",
		"events_configured", cfg.Events.IsConfigured(),
		"enabled_services", bootstrap.GetEnabledServices(cfg))
}
