package cacheinfra

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// MapConfig configures the concurrent map behind an entity cache.
type MapConfig struct {
	// PresizeHint is the expected number of entries. Zero uses the xsync default.
	PresizeHint int
}

// DefaultMapConfig returns a MapConfig sized for the Northwind customer table.
func DefaultMapConfig() MapConfig {
	return MapConfig{PresizeHint: 128}
}

// Validate checks if the configuration values are valid.
func (c MapConfig) Validate() error {
	if c.PresizeHint < 0 {
		return &ConfigError{Field: "PresizeHint", Message: "must be non-negative"}
	}
	return nil
}

// MapCache is an entity cache on top of xsync.MapOf. Every primitive that
// inspects and then changes a slot runs inside MapOf.Compute, which holds the
// bucket lock for the key, so the check and the write cannot interleave with
// another writer on the same key. Loads are lock-free.
type MapCache[K comparable, V comparable] struct {
	m *xsync.MapOf[K, V]
}

// NewMapCache validates cfg and returns an empty MapCache.
func NewMapCache[K comparable, V comparable](cfg MapConfig) (*MapCache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var m *xsync.MapOf[K, V]
	if cfg.PresizeHint > 0 {
		m = xsync.NewMapOf[K, V](xsync.WithPresize(cfg.PresizeHint))
	} else {
		m = xsync.NewMapOf[K, V]()
	}

	return &MapCache[K, V]{m: m}, nil
}

// Load returns the value stored at key.
func (c *MapCache[K, V]) Load(key K) (V, bool) {
	return c.m.Load(key)
}

// AddOrUpdate inserts value when key is absent, otherwise asks resolve for the
// replacement of the current value.
func (c *MapCache[K, V]) AddOrUpdate(key K, value V, resolve func(current V) (V, bool)) (V, bool) {
	stored := false
	actual, _ := c.m.Compute(key, func(current V, loaded bool) (V, bool) {
		if !loaded {
			stored = true
			return value, false
		}
		next, ok := resolve(current)
		if !ok {
			return current, false
		}
		stored = true
		return next, false
	})

	if !stored {
		var zero V
		return zero, false
	}
	return actual, true
}

// CompareAndSwap replaces the value at key with next if it still equals old.
func (c *MapCache[K, V]) CompareAndSwap(key K, old, next V) bool {
	swapped := false
	c.m.Compute(key, func(current V, loaded bool) (V, bool) {
		if !loaded {
			// delete of an absent key is a no-op
			return current, true
		}
		if current != old {
			return current, false
		}
		swapped = true
		return next, false
	})
	return swapped
}

// Remove deletes key and reports whether it was present.
func (c *MapCache[K, V]) Remove(key K) bool {
	_, ok := c.m.LoadAndDelete(key)
	return ok
}

// Values returns a snapshot of the stored values in no particular order.
func (c *MapCache[K, V]) Values() []V {
	values := make([]V, 0, c.m.Size())
	c.m.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Len returns the number of stored entries.
func (c *MapCache[K, V]) Len() int {
	return c.m.Size()
}
