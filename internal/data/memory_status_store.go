package data

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
)

var _ core.StatusStore = (*MemoryStatusStore)(nil)

// MemoryStatusStore is an in-process LRU of process records with per-entry TTL.
// Records are copied on the way in and out.
// Concurrency: methods are safe for concurrent use.
type MemoryStatusStore struct {
	mu     sync.Mutex
	cap    int
	ttl    time.Duration
	ll     *list.List               // front = most-recently used
	items  map[string]*list.Element // process id -> element
	now    func() time.Time
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

type statusEntry struct {
	key    string
	rec    model.ProcessRecord
	expiry time.Time // zero means no expiry
}

// MemoryStatusStoreConfig groups constructor options.
type MemoryStatusStoreConfig struct {
	Capacity int
	// TTL <= 0 keeps records until they are evicted by capacity.
	TTL time.Duration
	Now func() time.Time
}

// DefaultMemoryStatusStoreConfig mirrors the STATUS_STORE_* defaults.
func DefaultMemoryStatusStoreConfig() MemoryStatusStoreConfig {
	return MemoryStatusStoreConfig{Capacity: 10000, TTL: 24 * time.Hour, Now: time.Now}
}

// NewMemoryStatusStore creates a MemoryStatusStore.
func NewMemoryStatusStore(cfg MemoryStatusStoreConfig) *MemoryStatusStore {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10000
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryStatusStore{
		cap:   capacity,
		ttl:   cfg.TTL,
		ll:    list.New(),
		items: make(map[string]*list.Element),
		now:   nowFn,
	}
}

// Put inserts or replaces the record for rec.ProcessID.
func (s *MemoryStatusStore) Put(_ context.Context, rec model.ProcessRecord) error {
	if rec.ProcessID == "" {
		return ErrProcessIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}

	if el, found := s.items[rec.ProcessID]; found {
		ent := el.Value.(*statusEntry) //nolint:forcetypeassert // only *statusEntry is ever stored
		ent.rec = rec.Clone()
		ent.expiry = exp
		s.ll.MoveToFront(el)
		return nil
	}

	el := s.ll.PushFront(&statusEntry{key: rec.ProcessID, rec: rec.Clone(), expiry: exp})
	s.items[rec.ProcessID] = el
	s.evictIfNeeded()
	return nil
}

// Get returns the record for processID if present and not expired.
func (s *MemoryStatusStore) Get(_ context.Context, processID string) (mo.Option[model.ProcessRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, found := s.items[processID]
	if !found {
		s.misses.Add(1)
		return mo.None[model.ProcessRecord](), nil
	}
	ent := el.Value.(*statusEntry) //nolint:forcetypeassert // only *statusEntry is ever stored
	if s.isExpired(ent) {
		s.removeElement(el)
		s.misses.Add(1)
		return mo.None[model.ProcessRecord](), nil
	}
	s.ll.MoveToFront(el)
	s.hits.Add(1)
	return mo.Some(ent.rec.Clone()), nil
}

// Len returns the current number of records, expired ones included until touched.
func (s *MemoryStatusStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// MemoryStatusStoreStats are simple counters for observability.
type MemoryStatusStoreStats struct {
	Hits, Misses, Evictions uint64
	Size, Capacity          int
}

// Stats returns a snapshot of counters and sizes.
func (s *MemoryStatusStore) Stats() MemoryStatusStoreStats {
	return MemoryStatusStoreStats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evicts.Load(),
		Size:      s.Len(),
		Capacity:  s.cap,
	}
}

// Helpers (caller must hold s.mu).
func (s *MemoryStatusStore) isExpired(e *statusEntry) bool {
	if e.expiry.IsZero() {
		return false
	}
	return s.now().After(e.expiry)
}

func (s *MemoryStatusStore) removeElement(el *list.Element) {
	s.ll.Remove(el)
	if ent, ok := el.Value.(*statusEntry); ok {
		delete(s.items, ent.key)
	}
}

func (s *MemoryStatusStore) evictIfNeeded() {
	for s.ll.Len() > s.cap {
		el := s.ll.Back()
		if el == nil {
			return
		}
		s.removeElement(el)
		s.evicts.Add(1)
	}
}
