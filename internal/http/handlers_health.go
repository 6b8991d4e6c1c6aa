package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
)

const (
	healthResponse    = `{"status":"ok"}`
	unhealthyResponse = `{"status":"unavailable"}`
	healthTimeout     = 2 * time.Second
)

// healthHandler answers readiness/liveness checks. With a checker it reports
// 503 while the status store backend is unreachable.
func healthHandler(checker core.HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, healthResponse
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			err := checker.Health(ctx)
			cancel()
			if err != nil {
				logger.WarnContext(r.Context(), "status store health check failed", "error", err)
				status, body = http.StatusServiceUnavailable, unhealthyResponse
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, body)
	}
}
