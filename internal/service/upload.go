package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/metrics"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

// MsgDispatchFailed is the only message a client sees when an upload cannot be handed over.
const MsgDispatchFailed = "Problems accepting package for unpackaging and validation..."

// UploadRequest is a validated package upload.
type UploadRequest struct {
	File        io.Reader
	FileName    string
	ContentType string
	// Fields are the remaining form fields, forwarded to the worker.
	Fields map[string][]string
}

// UploadServiceOptions groups dependencies for UploadService.
type UploadServiceOptions struct {
	Unpackager  core.Unpackager  // Required
	Store       core.StatusStore // Required
	CallbackURL string           // Required: INTERNAL_CALLBACK_URL
	Logger      *slog.Logger
	Metrics     statsd.Sink
	Now         func() time.Time
	NewID       func() string
}

// UploadService hands packages to the unpackager and registers them as waiting.
type UploadService struct {
	unpackager  core.Unpackager
	store       core.StatusStore
	callbackURL string
	logger      *slog.Logger
	metrics     statsd.Sink
	now         func() time.Time
	newID       func() string
}

// NewUploadService constructs an UploadService.
func NewUploadService(opts UploadServiceOptions) (*UploadService, error) {
	if opts.Unpackager == nil {
		return nil, errors.New("unpackager is required")
	}
	if opts.Store == nil {
		return nil, errors.New("status store is required")
	}
	if strings.TrimSpace(opts.CallbackURL) == "" {
		return nil, errors.New("callback url is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	return &UploadService{
		unpackager:  opts.Unpackager,
		store:       opts.Store,
		callbackURL: opts.CallbackURL,
		logger:      logger.With("component", "upload_service"),
		metrics:     opts.Metrics,
		now:         now,
		newID:       newID,
	}, nil
}

// Dispatch forwards the package and returns the waiting record stored for it.
//
// A rejection by the worker carries its status code as an
// apperrors.UpstreamStatusError. The record is only stored after the worker
// accepted the package.
func (s *UploadService) Dispatch(ctx context.Context, req UploadRequest) (rec model.ProcessRecord, err error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		if err != nil && result == metrics.ResultSuccess {
			result = metrics.ResultError
		}
		metrics.Emit(s.metrics, metrics.Operation{
			Name:     "dispatch",
			Result:   result,
			Duration: time.Since(start),
			Err:      err,
		})
	}()

	res, err := s.unpackager.Submit(ctx, core.SubmitRequest{
		File:        req.File,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		CallbackURL: s.callbackURL,
		Fields:      req.Fields,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "unpackager submission failed",
			"file_name", req.FileName, "error", err)
		if apperrors.GetCode(err) == "" {
			err = apperrors.UpstreamUnavailable(err, MsgDispatchFailed)
		}
		return model.ProcessRecord{}, err
	}

	if !res.Accepted() {
		result = metrics.ResultRejected
		s.logger.WarnContext(ctx, "unpackager rejected package",
			"file_name", req.FileName,
			"status_code", res.StatusCode,
			"worker_status", res.Status,
			"worker_error", res.ErrorMsg,
		)
		return model.ProcessRecord{}, apperrors.UpstreamUnavailable(&apperrors.UpstreamStatusError{
			Service:    "unpackager",
			StatusCode: res.StatusCode,
			Detail:     res.ErrorMsg,
		}, MsgDispatchFailed)
	}

	rec = model.NewWaitingRecord(s.processID(res), s.now())
	if putErr := s.store.Put(ctx, rec); putErr != nil {
		s.logger.ErrorContext(ctx, "failed to register process",
			"process_id", rec.ProcessID, "error", putErr)
		return model.ProcessRecord{}, apperrors.Wrap(putErr, apperrors.ErrCodeInternal, MsgDispatchFailed)
	}

	s.logger.InfoContext(ctx, "package dispatched",
		"process_id", rec.ProcessID, "file_name", req.FileName)
	return rec, nil
}

// processID reuses the worker's id when it is a UUID so status fallbacks line up.
func (s *UploadService) processID(res model.SubmissionResult) string {
	if id := model.NormalizeProcessID(res.PackageProcessUUID); ValidProcessID(id) {
		return id
	}
	return s.newID()
}
