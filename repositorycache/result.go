package repositorycache

import (
	"fmt"

	"github.com/goliatone/go-customer-cache/customer"
)

// Outcome classifies how a repository call ended.
type Outcome int

const (
	// OutcomeOK means the call took effect. Customer holds the resulting entity.
	OutcomeOK Outcome = iota

	// OutcomeNotFound means the key does not exist: in the cache for Retrieve,
	// in the store for Delete.
	OutcomeNotFound

	// OutcomeStoreWriteRejected means the store did not affect exactly one row.
	// The cache was not touched.
	OutcomeStoreWriteRejected

	// OutcomeCacheRaceLost means the store write succeeded but the cache slot
	// was changed or removed concurrently, so the cache kept the other value.
	OutcomeCacheRaceLost

	// OutcomeCacheUnavailable means the customer cache has not been hydrated.
	OutcomeCacheUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeStoreWriteRejected:
		return "store_write_rejected"
	case OutcomeCacheRaceLost:
		return "cache_race_lost"
	case OutcomeCacheUnavailable:
		return "cache_unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is returned by every repository operation that can fail without an error.
type Result struct {
	Outcome Outcome

	// Customer is the entity the call produced. It is a copy; changing it
	// does not change the cache.
	Customer *customer.Customer

	// Affected is the row count the store reported for write operations.
	Affected int64

	// Removed reports, for a successful Delete, whether the cache held the key.
	Removed bool
}

// OK reports whether the operation took effect.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// NotFound reports whether the key was absent.
func (r Result) NotFound() bool {
	return r.Outcome == OutcomeNotFound
}

// NoResult reports whether the operation ended without a usable value for a
// reason other than a missing key.
func (r Result) NoResult() bool {
	switch r.Outcome {
	case OutcomeStoreWriteRejected, OutcomeCacheRaceLost, OutcomeCacheUnavailable:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	if r.Customer != nil {
		return fmt.Sprintf("%s(%s)", r.Outcome, r.Customer.CustomerID)
	}
	return r.Outcome.String()
}
