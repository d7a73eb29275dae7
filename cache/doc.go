// Package cache provides the caching contracts used by the customer repository
// and the directory listings.
//
// # Overview
//
// The package exports two families of types:
//
//   - EntityCache and Shared: a concurrent, never-evicting key/value container
//     and the process-wide holder that hydrates it exactly once
//   - CacheService and KeySerializer: a read-through cache with TTLs for
//     listings, and the key builder used to address it
//
// # Entity Cache
//
// EntityCache exposes the primitives needed to keep an in-memory copy of a
// table consistent with confirmed writes:
//
//   - Load: point lookup
//   - AddOrUpdate: insert if absent, otherwise resolve against the current value
//   - CompareAndSwap: replace only if the slot still holds a previously read value
//   - Remove: delete and report whether something was there
//
// Each primitive is atomic with respect to other callers on the same key.
// Values are compared by ==, so pointer values compare by identity: a snapshot
// read with Load stays valid for CompareAndSwap only until another writer
// replaces the slot.
//
// Shared owns one EntityCache for the life of the process:
//
//	customers := cache.NewShared[string, *customer.Customer](cache.DefaultEntityConfig(), keyOf)
//	c, _, err := customers.Hydrate(ctx, store.EnumerateAll)
//
// Hydrate is safe to call from any number of goroutines; the load function runs
// once. A failed load leaves the holder empty so a later call can retry.
//
// # Read-through Cache
//
// CacheService is backed by sturdyc. Use the generic GetOrFetch wrapper to keep
// call sites typed:
//
//	keys := cache.NewNamespacedKeySerializer("supplier")
//	suppliers, err := cache.GetOrFetch(ctx, svc, keys.SerializeKey("Suppliers"), fetch)
//
// Keys are built as namespace::method::arg..., so a whole namespace can be
// dropped with DeleteByPrefix after a write.
//
// # Key Serialization
//
//   - strings are used as-is
//   - fmt.Stringer values use String()
//   - numbers and booleans use their %v form
//   - everything else is JSON encoded (map keys sorted)
//   - values JSON cannot encode fall back to their type name
package cache
