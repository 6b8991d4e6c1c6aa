package config

import (
	"log/slog"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - upstream.go: worker, catalogue and callback endpoints, pagination defaults
//   - database.go: status store backend, Postgres and Redis
//   - storage.go: scratch bucket used to materialize remote files
//   - events.go: RabbitMQ completion event consumer
//   - http.go: HTTP server configuration
//   - services.go: service modes
type AppConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP       HTTPConfig
	Upstream   UpstreamConfig
	Pagination PaginationConfig

	// Status store configuration
	Store    StoreConfig `envPrefix:"STATUS_STORE_"`
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	Scratch ScratchConfig `envPrefix:"SCRATCH_"`
	Events  EventsConfig  `envPrefix:"AMQP_"`

	// Services is a comma-delimited list of service modes to run.
	Services string `env:"SERVICES" envDefault:"http,janitor"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.HTTP.Sanitize()
	c.Upstream.Sanitize()
	c.Pagination.Sanitize()
	c.Store.Sanitize()
	c.Scratch.Sanitize()
	c.Events.Sanitize()
	c.Observability.Sanitize()
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsEventsConsumerEnabled returns true if the AMQP completion event consumer is enabled.
func (c *AppConfig) IsEventsConsumerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeEvents]
}

// IsJanitorEnabled returns true if the scratch janitor is enabled.
func (c *AppConfig) IsJanitorEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeJanitor]
}
