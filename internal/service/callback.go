package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/metrics"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

// CallbackServiceOptions groups dependencies for CallbackService.
type CallbackServiceOptions struct {
	Store core.StatusStore // Required
	// Unpackager is consulted on status misses when StatusFallback is set.
	Unpackager     core.Unpackager
	StatusFallback bool
	Logger         *slog.Logger
	Metrics        statsd.Sink
	Now            func() time.Time
}

// CallbackService correlates worker completion events with submitted processes.
type CallbackService struct {
	store      core.StatusStore
	unpackager core.Unpackager
	fallback   bool
	logger     *slog.Logger
	metrics    statsd.Sink
	now        func() time.Time
}

// NewCallbackService constructs a CallbackService.
func NewCallbackService(opts CallbackServiceOptions) (*CallbackService, error) {
	if opts.Store == nil {
		return nil, errors.New("status store is required")
	}
	if opts.StatusFallback && opts.Unpackager == nil {
		return nil, errors.New("status fallback requires an unpackager")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CallbackService{
		store:      opts.Store,
		unpackager: opts.Unpackager,
		fallback:   opts.StatusFallback,
		logger:     logger.With("component", "callback_service"),
		metrics:    opts.Metrics,
		now:        now,
	}, nil
}

// Ingest records the state carried by event, replacing whatever was stored.
// Unknown process ids are accepted and create a record.
func (s *CallbackService) Ingest(ctx context.Context, event model.CallbackEvent) (rec model.ProcessRecord, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultFor(err)
		if apperrors.IsValidation(err) {
			result = metrics.ResultRejected
		}
		metrics.Emit(s.metrics, metrics.Operation{
			Name:     "callback",
			Result:   result,
			Duration: time.Since(start),
			Err:      err,
			Tags:     map[string]string{"status": string(rec.Status)},
		})
	}()

	id := event.CorrelationID()
	if id == "" {
		return model.ProcessRecord{}, apperrors.ValidationField(
			"process_id", "event has no process id", apperrors.ErrMalformedEvent)
	}
	status, err := parseStatus(event.RawStatus())
	if err != nil {
		return model.ProcessRecord{}, apperrors.ValidationField("status", err.Error(), apperrors.ErrMalformedEvent)
	}

	rec = model.ProcessRecord{
		ProcessID: id,
		Status:    status,
		UpdatedAt: s.now().UTC(),
	}
	if msg := event.Error(); status == model.ProcessStatusFailed && msg != "" {
		rec.ErrorMessage = &msg
	}

	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to store callback", "process_id", id, "error", err)
		return model.ProcessRecord{}, err
	}

	s.logger.InfoContext(ctx, "callback processed",
		"process_id", id,
		"status", status,
		"event_name", event.EventName,
		"package_id", event.PackageID,
	)
	return rec, nil
}

// Status returns the latest known record for processID.
func (s *CallbackService) Status(ctx context.Context, processID string) (mo.Option[model.ProcessRecord], error) {
	found, err := s.store.Get(ctx, processID)
	if err != nil {
		return mo.None[model.ProcessRecord](), err
	}
	if found.IsPresent() || !s.fallback {
		return found, nil
	}

	remote, err := s.unpackager.Status(ctx, processID)
	if err != nil {
		s.logger.WarnContext(ctx, "unpackager status lookup failed",
			"process_id", processID, "error", err)
		return mo.None[model.ProcessRecord](), nil
	}
	rec, ok := remote.Get()
	if !ok {
		return remote, nil
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.now().UTC()
	}
	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to cache unpackager status",
			"process_id", processID, "error", err)
	}
	return mo.Some(rec), nil
}
