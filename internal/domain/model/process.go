// Package model defines the core data types shared by the package intake gateway.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ProcessStatus is the processing state of a submitted package.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ProcessStatus string

const (
	// ProcessStatusWaiting is assigned at dispatch time, before the worker reports back.
	ProcessStatusWaiting ProcessStatus = "waiting"
	// ProcessStatusRunning indicates the worker is unpacking/validating the package.
	ProcessStatusRunning ProcessStatus = "running"
	// ProcessStatusFailed indicates the worker rejected the package.
	ProcessStatusFailed ProcessStatus = "failed"
	// ProcessStatusSuccess indicates the package was unpacked and validated.
	ProcessStatusSuccess ProcessStatus = "success"
)

// Valid returns true if the ProcessStatus is one of the known states.
func (s ProcessStatus) Valid() bool {
	switch s {
	case ProcessStatusWaiting, ProcessStatusRunning, ProcessStatusFailed, ProcessStatusSuccess:
		return true
	default:
		return false
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be parsed case-insensitively.
func (s *ProcessStatus) UnmarshalText(text []byte) error {
	v := ProcessStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid ProcessStatus: %q", string(text))
	}
	*s = v
	return nil
}

// NormalizeProcessID is the canonical form of a worker-issued process id.
// Every id written to the status store goes through it.
func NormalizeProcessID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ProcessRecord is the latest known status of one submitted package.
type ProcessRecord struct {
	ProcessID    string        `json:"process_id"              db:"process_id"`
	Status       ProcessStatus `json:"status"                  db:"status"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	UpdatedAt    time.Time     `json:"updated_at"              db:"updated_at"`
}

// Clone returns a deep copy so callers never share the ErrorMessage pointer.
func (r ProcessRecord) Clone() ProcessRecord {
	out := r
	if r.ErrorMessage != nil {
		msg := *r.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}

// NewWaitingRecord builds the record registered when a package is handed to the worker.
func NewWaitingRecord(processID string, now time.Time) ProcessRecord {
	return ProcessRecord{
		ProcessID: processID,
		Status:    ProcessStatusWaiting,
		UpdatedAt: now.UTC(),
	}
}

// CallbackEvent is a completion event emitted by the worker.
//
// The worker uses its own field names (package_process_uuid, package_process_status,
// error_msg); the gateway names (process_id, status, error_message) are accepted too
// and win when both are present.
type CallbackEvent struct {
	ProcessID    string `json:"process_id,omitempty"`
	Status       string `json:"status,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	PackageProcessUUID   string `json:"package_process_uuid,omitempty"`
	PackageProcessStatus string `json:"package_process_status,omitempty"`
	ErrorMsg             string `json:"error_msg,omitempty"`

	EventName       string `json:"event_name,omitempty"`
	PackageID       string `json:"package_id,omitempty"`
	PackageLocation string `json:"package_location,omitempty"`
}

// CorrelationID returns the process id carried by the event, lowercased so it
// matches the id registered at dispatch time.
func (e CallbackEvent) CorrelationID() string {
	if id := NormalizeProcessID(e.ProcessID); id != "" {
		return id
	}
	return NormalizeProcessID(e.PackageProcessUUID)
}

// RawStatus returns the status string carried by the event. Case is preserved.
func (e CallbackEvent) RawStatus() string {
	if s := strings.TrimSpace(e.Status); s != "" {
		return s
	}
	return strings.TrimSpace(e.PackageProcessStatus)
}

// Error returns the error message carried by the event, if any.
func (e CallbackEvent) Error() string {
	if e.ErrorMessage != "" {
		return e.ErrorMessage
	}
	return e.ErrorMsg
}

// SubmissionResult is the worker's answer to an upload.
type SubmissionResult struct {
	StatusCode         int    `json:"-"`
	PackageProcessUUID string `json:"package_process_uuid"`
	Status             string `json:"status"`
	ErrorMsg           string `json:"error_msg"`
}

// Accepted reports whether the worker took the package.
func (r SubmissionResult) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
