package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/data"
)

// StatusStoreResult is the selected status store and the connections behind it.
type StatusStoreResult struct {
	Store core.StatusStore
	DB    *sql.DB
	Redis redis.UniversalClient
}

// Close releases the connections opened for the store.
func (r *StatusStoreResult) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewStatusStore builds the status store selected by STATUS_STORE_BACKEND.
// Only the backend in use is connected.
func NewStatusStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*StatusStoreResult, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		client, err := ConnectRedis(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store := data.NewCacheStatusStore(data.CacheStatusStoreOptions{
			Cache:     data.NewRedisCacheRepo(client),
			KeyPrefix: cfg.Store.KeyPrefix,
			TTL:       cfg.Store.TTL,
		})
		logger.InfoContext(ctx, "status store ready", "backend", cfg.Store.Backend, "ttl", cfg.Store.TTL)
		return &StatusStoreResult{Store: store, Redis: client}, nil

	case config.StoreBackendPostgres:
		db, err := ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if migErr := RunMigrations(ctx, db, logger); migErr != nil {
				return nil, errors.Join(migErr, db.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
		logger.InfoContext(ctx, "status store ready", "backend", cfg.Store.Backend)
		return &StatusStoreResult{Store: data.NewProcessRecordRepo(db), DB: db}, nil

	default:
		store := data.NewMemoryStatusStore(data.MemoryStatusStoreConfig{
			Capacity: cfg.Store.Capacity,
			TTL:      cfg.Store.TTL,
		})
		logger.InfoContext(ctx, "status store ready",
			"backend", config.StoreBackendMemory,
			"capacity", cfg.Store.Capacity,
			"ttl", cfg.Store.TTL,
		)
		return &StatusStoreResult{Store: store}, nil
	}
}
