package config

import (
	"strings"
	"time"
)

// ScratchConfig controls where remote files are materialized before they are served.
type ScratchConfig struct {
	// BucketURL is a gocloud.dev/blob URL: file:///tmp/tng-gtk-common, mem://, s3://bucket?region=...
	BucketURL string `env:"BUCKET_URL" envDefault:"file:///tmp/tng-gtk-common"`

	// Retention is how long a materialized object survives before the janitor removes it.
	Retention     time.Duration `env:"RETENTION"      envDefault:"1h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`

	// CoalesceDownloads shares one transfer between concurrent requests for the same file.
	CoalesceDownloads bool `env:"COALESCE_DOWNLOADS" envDefault:"false"`

	MaterializeTimeout time.Duration `env:"MATERIALIZE_TIMEOUT" envDefault:"2m"`
}

// Sanitize restores defaults for empty or non-positive values.
func (s *ScratchConfig) Sanitize() {
	s.BucketURL = strings.TrimSpace(s.BucketURL)
	if s.BucketURL == "" {
		s.BucketURL = "file:///tmp/tng-gtk-common"
	}
	if s.Retention <= 0 {
		s.Retention = time.Hour
	}
	if s.SweepInterval <= 0 {
		s.SweepInterval = 10 * time.Minute
	}
	if s.MaterializeTimeout <= 0 {
		s.MaterializeTimeout = 2 * time.Minute
	}
}
