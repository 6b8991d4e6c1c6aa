package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

// dispatchStatus picks the status code for a failed upload: the worker's own
// code when it answered, 503 when it could not be reached, 500 for local failures.
func dispatchStatus(err error) int {
	if code, ok := apperrors.UpstreamStatusCode(err); ok && code >= 400 && code <= 599 {
		return code
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeInternal, apperrors.ErrCodeConflict, "":
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}

// errorCode returns the wire error code for err.
func errorCode(err error, fallback apperrors.ErrorCode) string {
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	return string(fallback)
}

// publicMessage returns the message of the outermost AppError, or fallback.
func publicMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
