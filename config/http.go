package config

import "time"

const (
	defaultMaxUploadMemory = 32 << 20
	minMaxUploadMemory     = 1 << 20
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":5000"`

	// MaxUploadMemory is the number of bytes of a multipart upload kept in memory;
	// the remainder spills to temporary files.
	MaxUploadMemory int64 `env:"HTTP_MAX_UPLOAD_MEMORY" envDefault:"33554432"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"60s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"180s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT"  envDefault:"120s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":5000"
	}
	if h.MaxUploadMemory <= 0 {
		h.MaxUploadMemory = defaultMaxUploadMemory
	}
	if h.MaxUploadMemory < minMaxUploadMemory {
		h.MaxUploadMemory = minMaxUploadMemory
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 60 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 180 * time.Second
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120 * time.Second
	}
}
