package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/adapters/amqpevents"
	"github.com/StefanUPB/tng-gtk-common/internal/adapters/catalogue"
	"github.com/StefanUPB/tng-gtk-common/internal/adapters/unpackager"
	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Uploads   *service.UploadService
	Callbacks *service.CallbackService
	Catalogue *service.CatalogueService
	Janitor   *service.Janitor
	// Events is nil unless AMQP_URL is set.
	Events *amqpevents.Consumer

	// Health is set when the status store depends on an external service.
	Health  core.HealthChecker
	Store   core.StatusStore
	Metrics statsd.Sink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config  *config.AppConfig
	Store   core.StatusStore
	Bucket  *blob.Bucket
	Metrics statsd.Sink
	Logger  *slog.Logger

	// Unpackager and Catalogue override the HTTP adapters (tests).
	Unpackager core.Unpackager
	Catalogue  core.Catalogue
}

// NewServices builds every service from its adapters.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	unp := deps.Unpackager
	if unp == nil {
		unp = unpackager.NewClient(unpackager.Options{
			BaseURL: cfg.Upstream.UnpackagerURL,
			Timeout: cfg.Upstream.UnpackagerTimeout,
			Logger:  logger,
		})
	}
	cat := deps.Catalogue
	if cat == nil {
		cat = catalogue.NewClient(catalogue.Options{
			BaseURL: cfg.Upstream.CatalogueURL,
			Timeout: cfg.Upstream.CatalogueTimeout,
			Logger:  logger,
		})
	}

	uploads, err := service.NewUploadService(service.UploadServiceOptions{
		Unpackager:  unp,
		Store:       deps.Store,
		CallbackURL: cfg.Upstream.CallbackURL,
		Logger:      logger,
		Metrics:     deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("upload service: %w", err)
	}

	callbacks, err := service.NewCallbackService(service.CallbackServiceOptions{
		Store:          deps.Store,
		Unpackager:     unp,
		StatusFallback: cfg.Upstream.StatusFallback,
		Logger:         logger,
		Metrics:        deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("callback service: %w", err)
	}

	materializer, err := service.NewMaterializer(service.MaterializerOptions{
		Bucket:   deps.Bucket,
		Timeout:  cfg.Scratch.MaterializeTimeout,
		Coalesce: cfg.Scratch.CoalesceDownloads,
		Logger:   logger,
		Metrics:  deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("materializer: %w", err)
	}

	catalogueSvc, err := service.NewCatalogueService(service.CatalogueServiceOptions{
		Catalogue:         cat,
		Materializer:      materializer,
		DefaultPageNumber: cfg.Pagination.DefaultPageNumber,
		DefaultPageSize:   cfg.Pagination.DefaultPageSize,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("catalogue service: %w", err)
	}

	janitor, err := service.NewJanitor(service.JanitorOptions{
		Bucket:    deps.Bucket,
		Retention: cfg.Scratch.Retention,
		Interval:  cfg.Scratch.SweepInterval,
		Logger:    logger,
		Metrics:   deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("janitor: %w", err)
	}

	container := &ServiceContainer{
		Uploads:   uploads,
		Callbacks: callbacks,
		Catalogue: catalogueSvc,
		Janitor:   janitor,
		Store:     deps.Store,
		Metrics:   deps.Metrics,
	}
	if hc, ok := deps.Store.(core.HealthChecker); ok {
		container.Health = hc
	}

	if cfg.Events.IsConfigured() {
		consumer, consumerErr := amqpevents.NewConsumer(amqpevents.ConsumerOptions{
			Config:   cfg.Events,
			Ingester: callbacks,
			Logger:   logger,
		})
		if consumerErr != nil {
			return nil, fmt.Errorf("events consumer: %w", consumerErr)
		}
		container.Events = consumer
	}

	return container, nil
}

// NewMetricsSink returns the StatsD client, or nil when metrics are disabled.
//
//nolint:ireturn // callers only need the Sink
func NewMetricsSink(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) statsd.Sink {
	if !cfg.IsEnabled() {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// ServiceOrchestrationConfig contains what RunServices needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown runs the enabled services until SIGINT/SIGTERM or
// until one of them fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunServices(ctx, cfg)
}

// RunServices starts every enabled service under one errgroup. The first
// failure cancels the others; a canceled ctx stops all of them cleanly.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is incomplete")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	if enabled[config.ServiceModeEvents] && cfg.Services.Events == nil {
		return errors.New("events service enabled but AMQP is not configured")
	}

	g, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(cfg.Config.HTTP, cfg.Services, logger)
		g.Go(func() error {
			return ServeHTTP(gctx, server, logger)
		})

		// The memory store lives in this process, so its gauges go with the HTTP service.
		if src, ok := cfg.Services.Store.(storeStatsSource); ok && cfg.Services.Metrics != nil {
			g.Go(func() error {
				return reportStoreStats(gctx, src, cfg.Services.Metrics, storeStatsInterval, logger)
			})
		}
	}

	if enabled[config.ServiceModeEvents] {
		g.Go(func() error {
			return cfg.Services.Events.Run(gctx)
		})
	}

	if enabled[config.ServiceModeJanitor] {
		g.Go(func() error {
			return cfg.Services.Janitor.Run(gctx)
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service error", "error", err)
		return err
	}
	logger.Info("all services stopped")
	return nil
}
