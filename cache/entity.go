package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

// EntityCache is a concurrent key/value container whose primitives are atomic
// with respect to other callers on the same key.
type EntityCache[K comparable, V comparable] interface {
	// Load returns the value stored at key.
	Load(key K) (V, bool)

	// AddOrUpdate stores value when key is absent. When key is present, resolve
	// is called with the current value while the key is locked; it returns the
	// replacement, or false to keep the current value. The stored value is
	// returned, or false when resolve declined.
	AddOrUpdate(key K, value V, resolve func(current V) (V, bool)) (V, bool)

	// CompareAndSwap replaces the value at key with next only if it is still old.
	CompareAndSwap(key K, old, next V) bool

	// Remove deletes key and reports whether an entry was present.
	Remove(key K) bool

	// Values returns a point-in-time snapshot of the stored values.
	Values() []V

	// Len returns the number of stored entries.
	Len() int
}

// HydrateFn enumerates every entity that should seed a Shared cache.
type HydrateFn[V any] func(ctx context.Context) ([]V, error)

type cacheRef[K comparable, V comparable] struct {
	cache EntityCache[K, V]
}

// Shared owns a process-wide EntityCache that is created and hydrated at most
// once. Readers never take the lock; hydration is serialized so concurrent
// initializers observe a single hydrated cache.
type Shared[K comparable, V comparable] struct {
	cfg EntityConfig
	key func(V) K

	mu  sync.Mutex
	ref atomic.Pointer[cacheRef[K, V]]
}

// NewShared creates an empty, unhydrated holder. key derives the cache key of
// a hydrated entity.
func NewShared[K comparable, V comparable](cfg EntityConfig, key func(V) K) *Shared[K, V] {
	return &Shared[K, V]{cfg: cfg, key: key}
}

// Cache returns the hydrated cache, or false if hydration has not happened yet.
func (s *Shared[K, V]) Cache() (EntityCache[K, V], bool) {
	ref := s.ref.Load()
	if ref == nil {
		return nil, false
	}
	return ref.cache, true
}

// Hydrated reports whether the cache has been populated.
func (s *Shared[K, V]) Hydrated() bool {
	return s.ref.Load() != nil
}

// Hydrate populates the cache from load if it is not populated yet and returns
// it. The second result is true when this call performed the hydration. A
// failed load leaves the holder unhydrated so a later call can retry.
func (s *Shared[K, V]) Hydrate(ctx context.Context, load HydrateFn[V]) (EntityCache[K, V], bool, error) {
	if ref := s.ref.Load(); ref != nil {
		return ref.cache, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ref := s.ref.Load(); ref != nil {
		return ref.cache, false, nil
	}

	values, err := load(ctx)
	if err != nil {
		return nil, false, err
	}

	cfg := s.cfg
	if cfg.PresizeHint < len(values) {
		cfg.PresizeHint = len(values)
	}

	c, err := NewEntityCache[K, V](cfg)
	if err != nil {
		return nil, false, err
	}

	for _, v := range values {
		c.AddOrUpdate(s.key(v), v, func(_ V) (V, bool) { return v, true })
	}

	s.ref.Store(&cacheRef[K, V]{cache: c})
	return c, true, nil
}

// Reset drops the hydrated cache so the next Hydrate repopulates it.
func (s *Shared[K, V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ref.Store(nil)
}
