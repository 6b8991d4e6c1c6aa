package config

import (
	"strings"
	"time"
)

// DefaultCallbackURL is where the worker reports processing changes unless overridden.
const DefaultCallbackURL = "http://tng-gtk-common:5000/on-change"

// UpstreamConfig describes the external collaborators of the gateway.
//
// Empty URLs are allowed: the process still starts and the operations that
// need the collaborator log an error and return their failure result.
type UpstreamConfig struct {
	// CallbackURL is handed to the worker with every upload.
	CallbackURL string `env:"INTERNAL_CALLBACK_URL" envDefault:"http://tng-gtk-common:5000/on-change"`

	// CatalogueURL is the base URL of the catalogue (e.g. http://tng-cat:4011/api/catalogues/v2).
	CatalogueURL string `env:"CATALOGUE_URL" envDefault:""`

	// UnpackagerURL is the packages endpoint of the unpackaging worker
	// (e.g. http://tng-sdk-package:5099/api/v1/packages).
	UnpackagerURL string `env:"UNPACKAGER_URL" envDefault:""`

	UnpackagerTimeout time.Duration `env:"UNPACKAGER_TIMEOUT" envDefault:"30s"`
	CatalogueTimeout  time.Duration `env:"CATALOGUE_TIMEOUT"  envDefault:"15s"`

	// StatusFallback asks the worker for a process status when the status store misses.
	StatusFallback bool `env:"UNPACKAGER_STATUS_FALLBACK" envDefault:"false"`
}

// Sanitize trims URLs and restores default timeouts.
func (u *UpstreamConfig) Sanitize() {
	u.CallbackURL = strings.TrimSpace(u.CallbackURL)
	if u.CallbackURL == "" {
		u.CallbackURL = DefaultCallbackURL
	}
	u.CatalogueURL = strings.TrimRight(strings.TrimSpace(u.CatalogueURL), "/")
	u.UnpackagerURL = strings.TrimRight(strings.TrimSpace(u.UnpackagerURL), "/")
	if u.UnpackagerTimeout <= 0 {
		u.UnpackagerTimeout = 30 * time.Second
	}
	if u.CatalogueTimeout <= 0 {
		u.CatalogueTimeout = 15 * time.Second
	}
}

// PaginationConfig holds the defaults applied to catalogue collection queries.
type PaginationConfig struct {
	DefaultPageNumber int `env:"DEFAULT_PAGE_NUMBER" envDefault:"0"`
	DefaultPageSize   int `env:"DEFAULT_PAGE_SIZE"   envDefault:"100"`
}

// Sanitize clamps pagination defaults to usable values.
func (p *PaginationConfig) Sanitize() {
	if p.DefaultPageNumber < 0 {
		p.DefaultPageNumber = 0
	}
	if p.DefaultPageSize <= 0 {
		p.DefaultPageSize = 100
	}
}
