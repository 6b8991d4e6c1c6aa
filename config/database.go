package config

import (
	"strings"
	"time"
)

// StoreBackend selects the status store implementation.
type StoreBackend string

const (
	// StoreBackendMemory keeps records in a bounded in-process LRU.
	StoreBackendMemory StoreBackend = "memory"
	// StoreBackendRedis keeps records in Redis with a TTL.
	StoreBackendRedis StoreBackend = "redis"
	// StoreBackendPostgres keeps records in the process_records table.
	StoreBackendPostgres StoreBackend = "postgres"
)

// StoreConfig contains status store configuration.
type StoreConfig struct {
	Backend StoreBackend `env:"BACKEND" envDefault:"memory"`
	// TTL bounds how long a record is retained (memory and redis backends).
	TTL time.Duration `env:"TTL" envDefault:"24h"`
	// Capacity bounds the number of records held by the memory backend.
	Capacity int `env:"CAPACITY" envDefault:"10000"`
	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"gtk:process:"`
}

// Sanitize normalises the backend name and restores sane bounds.
func (s *StoreConfig) Sanitize() {
	s.Backend = StoreBackend(strings.ToLower(strings.TrimSpace(string(s.Backend))))
	switch s.Backend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
	default:
		s.Backend = StoreBackendMemory
	}
	if s.TTL < 0 {
		s.TTL = 0
	}
	if s.Capacity <= 0 {
		s.Capacity = 10000
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "gtk:process:"
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"gatekeeper"`
	Password string `env:"PASSWORD"                envDefault:"gatekeeper"`
	Name     string `env:"NAME"                    envDefault:"gatekeeper"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
