// Package repositorycache implements a cache-aside repository for Northwind
// customers.
//
// # Overview
//
// A CustomerRepository serves every read from a process-wide customer cache and
// sends every write to its Store first. The cache is only changed after the
// store reports exactly one affected row, so a rejected write never leaves the
// cache ahead of the store.
//
// All repositories built against the same Cache holder share one cache. The
// first repository constructed hydrates it from its store; later constructions
// reuse it. Concurrent constructions hydrate exactly once.
//
// # Basic Usage
//
//	db, err := store.Open(ctx, store.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	repo, err := repositorycache.New(ctx, store.NewHandle(db))
//	if err != nil {
//		return err
//	}
//
//	res := repo.Retrieve(ctx, "alfki") // ids are case-insensitive
//	if res.OK() {
//		fmt.Println(res.Customer.CompanyName)
//	}
//
// # Keys
//
// Customer ids are normalized to upper case before they reach the cache or the
// store. Retrieve("alfki") and Retrieve("ALFKI") always agree.
//
// # Results
//
// Operations report their outcome through Result instead of nil values:
//
//   - OutcomeOK: the operation took effect
//   - OutcomeNotFound: the key does not exist
//   - OutcomeStoreWriteRejected: the store affected zero or several rows
//   - OutcomeCacheRaceLost: the store write succeeded, but another writer
//     changed the cache slot first
//   - OutcomeCacheUnavailable: the cache has not been hydrated
//
// Errors are reserved for validation failures and store I/O failures.
//
// # Consistency
//
// Updates are applied to the cache with compare-and-swap against the value
// observed after the store write. When a concurrent writer wins the swap the
// cache keeps its value and the caller receives OutcomeCacheRaceLost; the store
// may then be ahead of the cache until the next write to that key. Reads never
// consult the store, and there is no expiry: the cache lives as long as the
// process.
//
// A repository owns its store and is not safe for concurrent use. Create one
// per unit of work; the cache behind it is safe for any number of goroutines.
package repositorycache
