package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
)

var (
	_ core.StatusStore   = (*CacheStatusStore)(nil)
	_ core.HealthChecker = (*CacheStatusStore)(nil)
)

// DefaultStatusKeyPrefix namespaces process records inside a shared cache.
const DefaultStatusKeyPrefix = "gtk:process:"

// CacheStatusStoreOptions configures a CacheStatusStore.
type CacheStatusStoreOptions struct {
	Cache     core.CacheRepository
	KeyPrefix string
	TTL       time.Duration
}

// CacheStatusStore keeps JSON-encoded process records in a CacheRepository.
// A single SET per Put gives atomic replacement per key.
type CacheStatusStore struct {
	cache  core.CacheRepository
	prefix string
	ttl    time.Duration
}

// NewCacheStatusStore constructs a CacheStatusStore. It panics without a cache.
func NewCacheStatusStore(opts CacheStatusStoreOptions) *CacheStatusStore {
	if opts.Cache == nil {
		panic("CacheRepository is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultStatusKeyPrefix
	}
	return &CacheStatusStore{cache: opts.Cache, prefix: prefix, ttl: opts.TTL}
}

// Put encodes rec and stores it with the configured TTL.
func (s *CacheStatusStore) Put(ctx context.Context, rec model.ProcessRecord) error {
	if rec.ProcessID == "" {
		return ErrProcessIDRequired
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode process record: %w", err)
	}
	if err := s.cache.Set(ctx, s.key(rec.ProcessID), payload, s.ttl); err != nil {
		return fmt.Errorf("store process record: %w", err)
	}
	return nil
}

// Get loads the record for processID.
func (s *CacheStatusStore) Get(ctx context.Context, processID string) (mo.Option[model.ProcessRecord], error) {
	if processID == "" {
		return mo.None[model.ProcessRecord](), nil
	}
	raw, err := s.cache.Get(ctx, s.key(processID))
	if err != nil {
		return mo.None[model.ProcessRecord](), fmt.Errorf("load process record: %w", err)
	}
	if raw == nil {
		return mo.None[model.ProcessRecord](), nil
	}
	var rec model.ProcessRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return mo.None[model.ProcessRecord](), fmt.Errorf("decode process record: %w", err)
	}
	return mo.Some(rec), nil
}

// Health reports whether the underlying cache is reachable.
func (s *CacheStatusStore) Health(ctx context.Context) error {
	return s.cache.Health(ctx)
}

func (s *CacheStatusStore) key(processID string) string {
	return s.prefix + processID
}
