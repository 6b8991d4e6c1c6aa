package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/bootstrap"
	"github.com/StefanUPB/tng-gtk-common/internal/data"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	"github.com/StefanUPB/tng-gtk-common/internal/migrate"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
)

var (
	errPostgresOnly   = errors.New("this command needs STATUS_STORE_BACKEND=postgres")
	errPersistentOnly = errors.New("this command needs a shared store: STATUS_STORE_BACKEND=redis or postgres")
)

func loadConfig(cmd *cli.Command) (config.AppConfig, error) {
	return bootstrap.LoadConfigFrom(cmd.String("env"))
}

func output(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func withDB(ctx context.Context, cfg config.AppConfig, fn func(*sql.DB) error) error {
	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: slog.Default()})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("db close failed", "error", closeErr)
		}
	}()
	return fn(db)
}

func migrateRunAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	return withDB(ctx, cfg, func(db *sql.DB) error {
		slog.Info("running database migrations")
		return bootstrap.RunMigrations(ctx, db, slog.Default())
	})
}

func migrateStatusAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return withDB(ctx, cfg, func(db *sql.DB) error {
		migrations, listErr := migrate.List(ctx, db)
		if listErr != nil {
			return listErr
		}
		return printMigrations(output(cmd), migrations)
	})
}

func printMigrations(w io.Writer, migrations []migrate.Migration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "VERSION\tAPPLIED"); err != nil {
		return err
	}
	for _, m := range migrations {
		applied := "pending"
		if m.Applied() {
			applied = m.AppliedAt.UTC().Format(time.RFC3339)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", m.Version, applied); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// withStore opens the configured status store. The memory backend only lives
// inside one process, so it is refused.
func withStore(ctx context.Context, cfg config.AppConfig, fn func(*bootstrap.StatusStoreResult) error) error {
	if cfg.Store.Backend != config.StoreBackendRedis && cfg.Store.Backend != config.StoreBackendPostgres {
		return errPersistentOnly
	}
	// Admin commands never change the schema implicitly.
	cfg.Postgres.RunMigrationsOnStart = false
	store, err := bootstrap.NewStatusStore(ctx, &cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("status store close failed", "error", closeErr)
		}
	}()
	return fn(store)
}

// processIDFlag applies the same rule as GET /status: ids are looked up
// exactly as given and must be lowercase canonical UUIDs.
func processIDFlag(cmd *cli.Command) (string, error) {
	id := cmd.String("id")
	if !service.ValidProcessID(id) {
		return "", fmt.Errorf("process UUID %q not valid", id)
	}
	return id, nil
}

func statusGetAction(ctx context.Context, cmd *cli.Command) error {
	id, err := processIDFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return withStore(ctx, cfg, func(res *bootstrap.StatusStoreResult) error {
		found, getErr := res.Store.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		rec, ok := found.Get()
		if !ok {
			return fmt.Errorf("no status found for %s", id)
		}
		return printRecord(output(cmd), rec)
	})
}

func statusPutAction(ctx context.Context, cmd *cli.Command) error {
	id, err := processIDFlag(cmd)
	if err != nil {
		return err
	}
	rec, err := buildRecord(id, cmd.String("status"), cmd.String("error"), time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return withStore(ctx, cfg, func(res *bootstrap.StatusStoreResult) error {
		if putErr := res.Store.Put(ctx, rec); putErr != nil {
			return putErr
		}
		return printRecord(output(cmd), rec)
	})
}

// buildRecord keeps msg only for failed processes, like callbacks do.
func buildRecord(id, rawStatus, msg string, now time.Time) (model.ProcessRecord, error) {
	var status model.ProcessStatus
	if err := status.UnmarshalText([]byte(rawStatus)); err != nil {
		return model.ProcessRecord{}, err
	}
	rec := model.ProcessRecord{ProcessID: id, Status: status, UpdatedAt: now.UTC()}
	if msg != "" && status == model.ProcessStatusFailed {
		rec.ErrorMessage = &msg
	}
	return rec, nil
}

func printRecord(w io.Writer, rec model.ProcessRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func statusPruneAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store.Backend != config.StoreBackendPostgres {
		return errPostgresOnly
	}
	olderThan := cmd.Duration("older-than")
	if olderThan <= 0 {
		return errors.New("--older-than must be positive")
	}

	return withStore(ctx, cfg, func(res *bootstrap.StatusStoreResult) error {
		removed, pruneErr := data.NewProcessRecordRepo(res.DB).DeleteOlderThan(ctx, time.Now().Add(-olderThan))
		if pruneErr != nil {
			return pruneErr
		}
		_, writeErr := fmt.Fprintf(output(cmd), "removed %d process records\n", removed)
		return writeErr
	})
}

func scratchSweepAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	retention := cfg.Scratch.Retention
	if override := cmd.Duration("retention"); override > 0 {
		retention = override
	}

	bucket, err := bootstrap.OpenScratchBucket(ctx, cfg.Scratch.BucketURL, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := bucket.Close(); closeErr != nil {
			slog.Warn("scratch bucket close failed", "error", closeErr)
		}
	}()

	janitor, err := service.NewJanitor(service.JanitorOptions{Bucket: bucket, Retention: retention})
	if err != nil {
		return err
	}
	removed, err := janitor.Sweep(ctx)
	if _, writeErr := fmt.Fprintf(output(cmd), "removed %d materialized files\n", removed); writeErr != nil {
		return errors.Join(err, writeErr)
	}
	return err
}
