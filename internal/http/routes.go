// Package httpx provides the HTTP surface of the package intake gateway.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Uploads   *service.UploadService
	Callbacks *service.CallbackService
	Catalogue *service.CatalogueService
	// Health, when set, is consulted by /healthz.
	Health core.HealthChecker
	// MaxUploadMemory is the part of a multipart upload kept in memory.
	MaxUploadMemory int64
	Logger          *slog.Logger
}

// NewRouter creates the gateway router wrapped in recovery and access logging.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	packages := &PackageHandlers{
		Uploads:         services.Uploads,
		Catalogue:       services.Catalogue,
		MaxUploadMemory: services.MaxUploadMemory,
		Logger:          logger.With("component", "package_handlers"),
	}
	callbacks := &CallbackHandlers{
		Svc:    services.Callbacks,
		Logger: logger.With("component", "callback_handlers"),
	}

	health := healthHandler(services.Health, logger.With("component", "health"))
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)

	registerCallbackRoutes(mux, callbacks)
	registerPackageRoutes(mux, packages)

	return withMiddleware(mux, logger)
}

// withMiddleware logs every request, panicking ones included.
func withMiddleware(h http.Handler, logger *slog.Logger) http.Handler {
	return Chain(h, Logging(logger), Recover(logger))
}

func registerCallbackRoutes(mux *http.ServeMux, h *CallbackHandlers) {
	mux.HandleFunc("POST /on-change", h.OnChange)
	mux.HandleFunc("POST /on-change/{$}", h.OnChange)
	mux.HandleFunc("GET /status/{process_id}", h.Status)
}

func registerPackageRoutes(mux *http.ServeMux, h *PackageHandlers) {
	mux.HandleFunc("POST /{$}", h.Upload)
	mux.HandleFunc("GET /{$}", h.List)
	mux.HandleFunc("GET /{package_uuid}", h.Get)
	mux.HandleFunc("GET /{package_uuid}/{resource}", h.Resource)
	mux.HandleFunc("GET /{package_uuid}/files/{file_uuid}", h.File)
}
