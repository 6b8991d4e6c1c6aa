package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"golang.org/x/sync/singleflight"

	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/metrics"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

// MaterializeRequest names a remote resource and how it should be served.
type MaterializeRequest struct {
	SourceURL   string
	FileName    string
	ContentType string
}

// MaterializerOptions groups dependencies for Materializer.
type MaterializerOptions struct {
	Bucket     *blob.Bucket // Required: scratch bucket
	HTTPClient *http.Client
	// Timeout bounds a single transfer. Defaults to 2m.
	Timeout  time.Duration
	Coalesce bool
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// Materializer copies remote files into the scratch bucket.
//
// An object only becomes visible under its key once the whole body was
// received; a failed transfer leaves nothing behind.
type Materializer struct {
	bucket   *blob.Bucket
	http     *http.Client
	timeout  time.Duration
	coalesce bool
	group    singleflight.Group
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewMaterializer constructs a Materializer.
func NewMaterializer(opts MaterializerOptions) (*Materializer, error) {
	if opts.Bucket == nil {
		return nil, errors.New("scratch bucket is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		bucket:   opts.Bucket,
		http:     httpClient,
		timeout:  timeout,
		coalesce: opts.Coalesce,
		logger:   logger.With("component", "materializer"),
		metrics:  opts.Metrics,
	}, nil
}

// Materialize downloads req.SourceURL into a fresh scratch object.
func (m *Materializer) Materialize(ctx context.Context, req MaterializeRequest) (model.MaterializedFile, error) {
	name, err := SafeFileName(req.FileName)
	if err != nil {
		return model.MaterializedFile{}, err
	}
	req.FileName = name
	if req.ContentType == "" {
		req.ContentType = model.DefaultFileContentType
	}

	if !m.coalesce {
		return m.transfer(ctx, req)
	}

	// Shared transfers must not die with the first caller.
	v, err, shared := m.group.Do(req.SourceURL+"\x00"+req.FileName, func() (any, error) {
		return m.transfer(context.WithoutCancel(ctx), req)
	})
	if shared {
		m.logger.DebugContext(ctx, "shared materialization", "source", req.SourceURL)
	}
	if err != nil {
		return model.MaterializedFile{}, err
	}
	file, _ := v.(model.MaterializedFile)
	return file, nil
}

func (m *Materializer) transfer(parent context.Context, req MaterializeRequest) (file model.MaterializedFile, err error) {
	start := time.Now()
	defer func() {
		metrics.Emit(m.metrics, metrics.Operation{
			Name:     "materialize",
			Result:   metrics.ResultFor(err),
			Duration: time.Since(start),
			Err:      err,
		})
	}()

	ctx, cancel := context.WithTimeout(parent, m.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.SourceURL, nil)
	if err != nil {
		return file, apperrors.Transport(err, "build download request")
	}
	httpReq.Header.Set("Content-Type", req.ContentType)

	resp, err := m.http.Do(httpReq)
	if err != nil {
		return file, apperrors.Transport(err, "download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return file, apperrors.Transport(&apperrors.UpstreamStatusError{
			Service: "catalogue", StatusCode: resp.StatusCode,
		}, "download failed")
	}

	// Flat keys: fileblob creates a directory per key prefix and never removes it.
	key := uuid.New().String() + "-" + req.FileName
	size, err := m.write(ctx, key, req, resp)
	if err != nil {
		m.logger.WarnContext(ctx, "materialization aborted",
			"source", req.SourceURL, "key", key, "error", err)
		return file, err
	}

	m.logger.DebugContext(ctx, "materialized file",
		"source", req.SourceURL, "key", key, "size", size)
	return model.MaterializedFile{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Key:         key,
		Size:        size,
	}, nil
}

// write streams resp.Body to key. The writer context is canceled on any
// failure so Close discards the partial object.
func (m *Materializer) write(ctx context.Context, key string, req MaterializeRequest, resp *http.Response) (int64, error) {
	wctx, abort := context.WithCancel(ctx)
	defer abort()

	w, err := m.bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType:        req.ContentType,
		ContentDisposition: attachment(req.FileName),
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "open scratch object")
	}

	n, copyErr := io.Copy(w, resp.Body)
	if copyErr == nil && resp.ContentLength >= 0 && n != resp.ContentLength {
		copyErr = fmt.Errorf("short body: got %d of %d bytes: %w", n, resp.ContentLength, io.ErrUnexpectedEOF)
	}
	if copyErr != nil {
		abort()
		_ = w.Close()
		return 0, apperrors.Transport(copyErr, "download interrupted")
	}

	if err := w.Close(); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "commit scratch object")
	}
	return n, nil
}

// Open returns a reader over a materialized file.
func (m *Materializer) Open(ctx context.Context, file model.MaterializedFile) (io.ReadCloser, error) {
	r, err := m.bucket.NewReader(ctx, file.Key, nil)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "open scratch object %s", file.Key)
	}
	return r, nil
}

// SafeFileName reduces name to its last path segment and rejects names that
// cannot be used as a download name.
func SafeFileName(name string) (string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	cleaned = path.Base(cleaned)
	switch cleaned {
	case "", ".", "..", "/":
		return "", apperrors.ValidationField("file_name", fmt.Sprintf("invalid file name %q", name), nil)
	}
	return cleaned, nil
}

// ContentDisposition formats an attachment header for name.
func ContentDisposition(name string) string {
	return attachment(name)
}

func attachment(name string) string {
	return `attachment; filename="` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}
