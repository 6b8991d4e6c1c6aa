package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrProcessIDRequired         = errors.New("process_id is required")
	ErrProcessStoreNotConfigured = errors.New("process record repository not configured")
)
