package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/adapters/unpackager"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/service"
)

const defaultMaxUploadMemory = 32 << 20

// Client-facing package messages.
const (
	msgUploadContentType = "Just accepting multipart package files for now"
	msgNoPackages        = "No packages fitting the provided parameters ('%s') were found"
	msgNoPackage         = "No package with UUID '%s' was found"
	msgNoPackageFile     = "No package file with UUID '%s' was found"
	msgNoFile            = "No file with UUID '%s' was found in package '%s'"
)

// PackageHandlers serves uploads and catalogue reads.
type PackageHandlers struct {
	Uploads         *service.UploadService
	Catalogue       *service.CatalogueService
	MaxUploadMemory int64
	Logger          *slog.Logger
}

// UploadResponse is returned once the worker accepted a package.
type UploadResponse struct {
	ProcessID string              `json:"process_id"`
	Status    model.ProcessStatus `json:"status"`
}

// Upload handles POST /.
func (h *PackageHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	if !service.IsMultipart(r.Header.Get("Content-Type")) {
		writeValidation(w, msgUploadContentType)
		return
	}

	maxMemory := h.MaxUploadMemory
	if maxMemory <= 0 {
		maxMemory = defaultMaxUploadMemory
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.Logger.WarnContext(r.Context(), "unreadable multipart upload", "error", err)
		writeValidation(w, service.MsgMissingPackageFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fh, err := service.ValidatePackageParameters(r.MultipartForm)
	if err != nil {
		writeValidation(w, publicMessage(err, service.MsgMissingPackageFile))
		return
	}

	file, err := fh.Open()
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "failed to open uploaded file", "error", err)
		writeDispatchFailure(w, http.StatusInternalServerError, apperrors.ErrCodeInternal)
		return
	}
	defer file.Close()

	rec, err := h.Uploads.Dispatch(r.Context(), service.UploadRequest{
		File:        file,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Fields:      formFields(r.MultipartForm.Value),
	})
	if err != nil {
		writeDispatchFailure(w, dispatchStatus(err), apperrors.GetCode(err))
		return
	}

	WriteJSON(w, http.StatusOK, UploadResponse{ProcessID: rec.ProcessID, Status: rec.Status})
}

func formFields(values map[string][]string) map[string][]string {
	out := make(map[string][]string, len(values))
	for k, v := range values {
		if k == unpackager.FileField {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}

func writeDispatchFailure(w http.ResponseWriter, status int, code apperrors.ErrorCode) {
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Message: service.MsgDispatchFailed})
}

// List handles GET / with catalogue filters in the query string.
func (h *PackageHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	doc, err := h.Catalogue.Metadata(r.Context(), query)
	h.writeDocument(w, doc, err, fmt.Sprintf(msgNoPackages, r.URL.RawQuery))
}

// Get handles GET /{package_uuid}.
func (h *PackageHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("package_uuid")
	doc, err := h.Catalogue.Metadata(r.Context(), url.Values{service.ParamPackageUUID: {id}})
	h.writeDocument(w, doc, err, fmt.Sprintf(msgNoPackage, id))
}

func (h *PackageHandlers) writeDocument(w http.ResponseWriter, doc mo.Option[json.RawMessage], err error, notFound string) {
	body, ok := doc.Get()
	if err != nil || !ok {
		writeNotFound(w, err, notFound)
		return
	}
	WriteRawJSON(w, http.StatusOK, body)
}

// Resource handles GET /{package_uuid}/{resource}. Only package-file is served.
func (h *PackageHandlers) Resource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("package_uuid")
	if r.PathValue("resource") != "package-file" {
		writeNotFound(w, nil, fmt.Sprintf(msgNoPackageFile, id))
		return
	}
	found, err := h.Catalogue.PackageFile(r.Context(), id)
	h.serveFile(w, r, found, err, fmt.Sprintf(msgNoPackageFile, id))
}

// File handles GET /{package_uuid}/files/{file_uuid}.
func (h *PackageHandlers) File(w http.ResponseWriter, r *http.Request) {
	id, fileID := r.PathValue("package_uuid"), r.PathValue("file_uuid")
	found, err := h.Catalogue.File(r.Context(), id, fileID)
	h.serveFile(w, r, found, err, fmt.Sprintf(msgNoFile, fileID, id))
}

func (h *PackageHandlers) serveFile(
	w http.ResponseWriter,
	r *http.Request,
	found mo.Option[model.MaterializedFile],
	err error,
	notFound string,
) {
	file, ok := found.Get()
	if err != nil || !ok {
		writeNotFound(w, err, notFound)
		return
	}

	rc, err := h.Catalogue.Open(r.Context(), file)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "materialized file vanished", "key", file.Key, "error", err)
		writeNotFound(w, err, notFound)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", service.ContentDisposition(file.FileName))
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.WarnContext(r.Context(), "file transfer to client interrupted", "key", file.Key, "error", err)
	}
}

func writeValidation(w http.ResponseWriter, msg string) {
	WriteError(w, ErrorParams{
		Code:    http.StatusBadRequest,
		ErrCode: string(apperrors.ErrCodeValidation),
		Message: msg,
	})
}

// writeNotFound answers 404 for reads; upstream failures are already logged
// and only show up in the error code.
func writeNotFound(w http.ResponseWriter, err error, msg string) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: errorCode(err, apperrors.ErrCodeNotFound),
		Message: msg,
	})
}
