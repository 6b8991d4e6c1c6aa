// Package service implements the gateway operations: upload dispatch, callback
// correlation, catalogue reads and scratch file materialization.
package service

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/StefanUPB/tng-gtk-common/internal/adapters/unpackager"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

// Messages returned to clients by the validator.
const (
	MsgMissingPackageFile = "Package file name parameter is missing"
	MsgEmptyEvent         = "Event received with no data"
)

var processIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidatePackageParameters returns the uploaded package file header, or a
// validation error when the package field is absent or empty.
func ValidatePackageParameters(form *multipart.Form) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, missingPackage()
	}
	headers := form.File[unpackager.FileField]
	if len(headers) == 0 || headers[0] == nil {
		return nil, missingPackage()
	}
	fh := headers[0]
	if strings.TrimSpace(fh.Filename) == "" || fh.Size <= 0 {
		return nil, missingPackage()
	}
	return fh, nil
}

func missingPackage() error {
	return apperrors.ValidationField(unpackager.FileField, MsgMissingPackageFile, apperrors.ErrMissingParameter)
}

// ValidateEvent decodes a completion event and checks that it names a
// process and a known status.
func ValidateEvent(body []byte) (model.CallbackEvent, error) {
	var event model.CallbackEvent

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return event, apperrors.ValidationField("body", MsgEmptyEvent, apperrors.ErrMalformedEvent)
	}
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return event, apperrors.ValidationField("body", err.Error(), apperrors.ErrMalformedEvent)
	}
	if event.CorrelationID() == "" {
		return event, apperrors.ValidationField("process_id", "event has no process id", apperrors.ErrMalformedEvent)
	}
	if _, err := parseStatus(event.RawStatus()); err != nil {
		return event, apperrors.ValidationField("status", err.Error(), apperrors.ErrMalformedEvent)
	}
	return event, nil
}

func parseStatus(raw string) (model.ProcessStatus, error) {
	var status model.ProcessStatus
	err := status.UnmarshalText([]byte(raw))
	return status, err
}

// ValidProcessID reports whether id is a lowercase canonical UUID.
func ValidProcessID(id string) bool {
	return processIDPattern.MatchString(id)
}

// IsMultipart reports whether contentType is multipart/form-data.
func IsMultipart(contentType string) bool {
	return mediaType(contentType) == "multipart/form-data"
}

// IsJSON reports whether contentType is application/json.
func IsJSON(contentType string) bool {
	return mediaType(contentType) == "application/json"
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
