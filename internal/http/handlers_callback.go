package httpx

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
)

const maxCallbackBytes = 1 << 20

// Client-facing callback and status messages.
const (
	msgCallbackContentType = "Just accepting callbacks in json"
	msgCallbackProcessed   = "Callback for process id %s processed"
	msgProcessIDNotValid   = "Process UUID %s not valid"
	msgNoStatusFound       = "No status found for %s processing id"
)

// CallbackHandlers serves the worker callback and process status lookups.
type CallbackHandlers struct {
	Svc    *service.CallbackService
	Logger *slog.Logger
}

// CallbackResponse acknowledges a processed callback.
type CallbackResponse struct {
	Message   string `json:"message"`
	ProcessID string `json:"process_id"`
}

// OnChange handles POST /on-change.
func (h *CallbackHandlers) OnChange(w http.ResponseWriter, r *http.Request) {
	if !service.IsJSON(r.Header.Get("Content-Type")) {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Message: msgCallbackContentType,
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBytes))
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Message: service.MsgEmptyEvent,
		})
		return
	}

	event, err := service.ValidateEvent(body)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "rejected callback", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: errorCode(err, apperrors.ErrCodeValidation),
			Message: publicMessage(err, service.MsgEmptyEvent),
		})
		return
	}

	rec, err := h.Svc.Ingest(r.Context(), event)
	if err != nil {
		if apperrors.IsValidation(err) {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: errorCode(err, apperrors.ErrCodeValidation),
				Message: publicMessage(err, "invalid event"),
			})
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: string(apperrors.ErrCodeInternal),
			Message: http.StatusText(http.StatusInternalServerError),
		})
		return
	}

	WriteJSON(w, http.StatusOK, CallbackResponse{
		Message:   fmt.Sprintf(msgCallbackProcessed, rec.ProcessID),
		ProcessID: rec.ProcessID,
	})
}

// Status handles GET /status/{process_id}.
func (h *CallbackHandlers) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("process_id")
	if !service.ValidProcessID(id) {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Message: fmt.Sprintf(msgProcessIDNotValid, id),
		})
		return
	}

	found, err := h.Svc.Status(r.Context(), id)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "status lookup failed", "process_id", id, "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: string(apperrors.ErrCodeInternal),
			Message: http.StatusText(http.StatusInternalServerError),
		})
		return
	}
	rec, ok := found.Get()
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: string(apperrors.ErrCodeNotFound),
			Message: fmt.Sprintf(msgNoStatusFound, id),
		})
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}
