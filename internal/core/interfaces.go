package core

import (
	"context"
	"encoding/json"
	"io"
	"net/url"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
)

// This file contains the port definitions used by the service layer.
// Services depend on these interfaces, adapters implement them.

// StatusStore keeps the latest ProcessRecord per process id.
// Put overwrites atomically per key; Get returns None for unknown ids.
type StatusStore interface {
	Put(ctx context.Context, rec model.ProcessRecord) error
	Get(ctx context.Context, processID string) (mo.Option[model.ProcessRecord], error)
}

// HealthChecker is implemented by stores that depend on an external service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SubmitRequest is an upload forwarded to the unpackager.
type SubmitRequest struct {
	File        io.Reader
	FileName    string
	ContentType string
	CallbackURL string
	// Fields are extra form fields forwarded verbatim.
	Fields map[string][]string
}

// Unpackager is the asynchronous unpack/validate worker.
type Unpackager interface {
	// Submit forwards a package. A non-2xx answer is reported through
	// SubmissionResult.StatusCode, not as an error.
	Submit(ctx context.Context, req SubmitRequest) (model.SubmissionResult, error)
	// Status asks the worker for the state of a process it knows about.
	Status(ctx context.Context, processID string) (mo.Option[model.ProcessRecord], error)
}

// Catalogue is the read-only package catalogue.
type Catalogue interface {
	// Get fetches a JSON document. A 404 or an empty document is None.
	Get(ctx context.Context, path string, query url.Values) (mo.Option[json.RawMessage], error)
	// ResolveURL returns the absolute URL of a catalogue path.
	ResolveURL(path string) (string, error)
}
