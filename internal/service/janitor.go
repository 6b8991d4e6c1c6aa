package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gocloud.dev/blob"

	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

// JanitorOptions groups dependencies for Janitor.
type JanitorOptions struct {
	Bucket    *blob.Bucket  // Required: scratch bucket
	Retention time.Duration // Objects older than this are removed. Defaults to 1h.
	Interval  time.Duration // Sweep period for Run. Defaults to 10m.
	Logger    *slog.Logger
	Metrics   statsd.Sink
	Now       func() time.Time
}

// Janitor removes stale materialized files from the scratch bucket.
type Janitor struct {
	bucket    *blob.Bucket
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time
}

// NewJanitor constructs a Janitor.
func NewJanitor(opts JanitorOptions) (*Janitor, error) {
	if opts.Bucket == nil {
		return nil, errors.New("scratch bucket is required")
	}
	if opts.Retention <= 0 {
		opts.Retention = time.Hour
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Janitor{
		bucket:    opts.Bucket,
		retention: opts.Retention,
		interval:  opts.Interval,
		logger:    opts.Logger.With("component", "scratch_janitor"),
		metrics:   opts.Metrics,
		now:       opts.Now,
	}, nil
}

// Sweep deletes every object whose modification time is older than the
// retention and returns how many were removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	cutoff := j.now().Add(-j.retention)

	var (
		removed int
		errs    []error
	)
	iter := j.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("list scratch bucket: %w", err)
		}
		if obj.IsDir || !obj.ModTime.Before(cutoff) {
			continue
		}
		if err := j.bucket.Delete(ctx, obj.Key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", obj.Key, err))
			continue
		}
		removed++
	}

	if j.metrics != nil {
		j.metrics.Count("gateway.janitor.removed", int64(removed), nil)
		j.metrics.Timing("gateway.janitor.duration", time.Since(start), nil)
	}
	return removed, errors.Join(errs...)
}

// Run sweeps immediately and then every interval until ctx is done.
// Returns nil on graceful shutdown.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.InfoContext(ctx, "starting scratch janitor",
		"interval", j.interval, "retention", j.retention)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.InfoContext(ctx, "scratch janitor stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			j.sweepAndLog(ctx)
		}
	}
}

func (j *Janitor) sweepAndLog(ctx context.Context) {
	removed, err := j.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		j.logger.ErrorContext(ctx, "scratch sweep failed", "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		j.logger.InfoContext(ctx, "scratch sweep completed", "removed", removed)
	}
}
