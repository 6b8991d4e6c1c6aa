package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/data/pgxutil"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

var (
	_ core.StatusStore   = (*ProcessRecordRepo)(nil)
	_ core.HealthChecker = (*ProcessRecordRepo)(nil)
)

// ProcessRecordRepo persists process records in Postgres.
type ProcessRecordRepo struct {
	DB *sql.DB
}

// NewProcessRecordRepo constructs a ProcessRecordRepo.
func NewProcessRecordRepo(db *sql.DB) *ProcessRecordRepo {
	return &ProcessRecordRepo{DB: db}
}

// Health pings the database.
func (r *ProcessRecordRepo) Health(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return ErrProcessStoreNotConfigured
	}
	return r.DB.PingContext(ctx)
}

// Put inserts or overwrites the record in a single statement.
func (r *ProcessRecordRepo) Put(ctx context.Context, rec model.ProcessRecord) error {
	if r == nil || r.DB == nil {
		return ErrProcessStoreNotConfigured
	}
	if rec.ProcessID == "" {
		return ErrProcessIDRequired
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	const query = `
		INSERT INTO process_records (process_id, status, error_message, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (process_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at;`
	if _, err := r.DB.ExecContext(ctx, query,
		rec.ProcessID, string(rec.Status), rec.ErrorMessage, updatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("upsert process_records: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Get loads the record for processID.
func (r *ProcessRecordRepo) Get(ctx context.Context, processID string) (mo.Option[model.ProcessRecord], error) {
	if r == nil || r.DB == nil {
		return mo.None[model.ProcessRecord](), ErrProcessStoreNotConfigured
	}
	if processID == "" {
		return mo.None[model.ProcessRecord](), nil
	}

	const query = `
		SELECT process_id, status, error_message, updated_at
		FROM process_records
		WHERE process_id = $1`

	var rec model.ProcessRecord
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, processID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rec, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ProcessRecord])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return mo.None[model.ProcessRecord](), nil
	}
	if err != nil {
		return mo.None[model.ProcessRecord](), fmt.Errorf("get process_records: %w", apperrors.MapDBError(err))
	}
	return mo.Some(rec), nil
}

// DeleteOlderThan removes records last written before cutoff and returns how many were removed.
func (r *ProcessRecordRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.DB == nil {
		return 0, ErrProcessStoreNotConfigured
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM process_records WHERE updated_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune process_records: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune process_records: %w", err)
	}
	return n, nil
}
