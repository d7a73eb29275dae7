package repositorycache

import (
	"context"
	"sort"
	"strings"

	"github.com/golang/glog"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-customer-cache/cache"
	"github.com/goliatone/go-customer-cache/customer"
	"github.com/goliatone/go-customer-cache/store"
)

// Store is the persistent side of the repository. Writes report how many rows
// they affected; the repository only trusts a count of exactly one.
type Store interface {
	Insert(ctx context.Context, c *customer.Customer) (int64, error)
	Update(ctx context.Context, c *customer.Customer) (int64, error)
	FindByKey(ctx context.Context, key string) (*customer.Customer, bool, error)
	Remove(ctx context.Context, c *customer.Customer) (int64, error)
	EnumerateAll(ctx context.Context) ([]*customer.Customer, error)
}

var _ Store = (*store.Handle)(nil)

// Cache is the process-wide holder of cached customers keyed by normalized id.
type Cache = cache.Shared[string, *customer.Customer]

// NewCache returns an empty customer cache holder. It is hydrated by the first
// repository constructed against it.
func NewCache(cfg cache.EntityConfig) *Cache {
	return cache.NewShared[string, *customer.Customer](cfg, func(c *customer.Customer) string {
		return customer.NormalizeID(c.CustomerID)
	})
}

// DefaultCache is the holder used by New.
var DefaultCache = NewCache(cache.DefaultEntityConfig())

// CustomerRepository serves customer reads from the shared cache and sends
// writes to its store first, updating the cache only after the store confirms
// exactly one affected row.
//
// A CustomerRepository owns its store (one unit of work) and is not meant to be
// shared between goroutines; the cache behind it is.
type CustomerRepository struct {
	store  Store
	shared *Cache
}

// New binds a repository to s and the process-wide DefaultCache, hydrating the
// cache from s if this is the first repository.
func New(ctx context.Context, s Store) (*CustomerRepository, error) {
	return NewWithCache(ctx, s, DefaultCache)
}

// NewWithCache binds a repository to s and shared, hydrating shared from s if
// it has not been hydrated yet.
func NewWithCache(ctx context.Context, s Store, shared *Cache) (*CustomerRepository, error) {
	r := &CustomerRepository{store: s, shared: shared}

	entities, hydrated, err := shared.Hydrate(ctx, r.enumerate)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "repositorycache: hydrate customer cache")
	}
	if hydrated {
		glog.Infof("repositorycache: hydrated customer cache with %d customers", entities.Len())
	}

	return r, nil
}

// Create normalizes the id of c and inserts it. When the store confirms the
// insert the customer is added to the cache, replacing any stale entry.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	next := c.Clone()
	next.Normalize()

	affected, err := r.store.Insert(ctx, next)
	if err != nil {
		return Result{}, storeFailure(err, "create", next.CustomerID)
	}
	if affected != 1 {
		return r.rejected("create", next.CustomerID, affected), nil
	}

	entities, ok := r.entities()
	if !ok {
		// uncached, but the row exists
		return Result{Outcome: OutcomeOK, Customer: next.Clone(), Affected: affected}, nil
	}

	stored, ok := entities.AddOrUpdate(next.CustomerID, next, replaceCurrent(next.CustomerID, next))
	if !ok {
		return r.raceLost("create", next.CustomerID, affected), nil
	}

	return Result{Outcome: OutcomeOK, Customer: stored.Clone(), Affected: affected}, nil
}

// RetrieveAll returns a snapshot of every cached customer ordered by id.
func (r *CustomerRepository) RetrieveAll(ctx context.Context) []*customer.Customer {
	entities, ok := r.entities()
	if !ok {
		return []*customer.Customer{}
	}
	return snapshot(entities.Values(), nil)
}

// RetrieveByCountry returns the cached customers whose country matches,
// ignoring case. An empty country matches every customer.
func (r *CustomerRepository) RetrieveByCountry(ctx context.Context, country string) []*customer.Customer {
	if country == "" {
		return r.RetrieveAll(ctx)
	}

	entities, ok := r.entities()
	if !ok {
		return []*customer.Customer{}
	}
	return snapshot(entities.Values(), func(c *customer.Customer) bool {
		return strings.EqualFold(c.Country, country)
	})
}

// Retrieve looks id up in the cache, ignoring case. The store is never queried.
func (r *CustomerRepository) Retrieve(ctx context.Context, id string) Result {
	entities, ok := r.entities()
	if !ok {
		return Result{Outcome: OutcomeCacheUnavailable}
	}

	c, ok := entities.Load(customer.NormalizeID(id))
	if !ok {
		return Result{Outcome: OutcomeNotFound}
	}
	return Result{Outcome: OutcomeOK, Customer: c.Clone()}
}

// Update writes c to the store and, once the store confirms one row, swaps it
// into the cache slot for id, provided nobody replaced that slot in between.
// An entity whose id differs from id is rejected without reaching the store.
func (r *CustomerRepository) Update(ctx context.Context, id string, c *customer.Customer) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	key := customer.NormalizeID(id)
	next := c.Clone()
	next.Normalize()
	if next.CustomerID != key {
		glog.Warningf("repositorycache: update for %s carries customer id %s", key, next.CustomerID)
		return Result{Outcome: OutcomeStoreWriteRejected}, nil
	}

	affected, err := r.store.Update(ctx, next)
	if err != nil {
		return Result{}, storeFailure(err, "update", key)
	}
	if affected != 1 {
		return r.rejected("update", key, affected), nil
	}

	entities, ok := r.entities()
	if !ok {
		return Result{Outcome: OutcomeCacheUnavailable, Affected: affected}, nil
	}

	current, ok := entities.Load(key)
	if !ok {
		return r.raceLost("update", key, affected), nil
	}
	if !entities.CompareAndSwap(key, current, next) {
		return r.raceLost("update", key, affected), nil
	}

	return Result{Outcome: OutcomeOK, Customer: next.Clone(), Affected: affected}, nil
}

// Delete removes the customer with id from the store, looking it up in the
// store rather than the cache, and then drops it from the cache. Result.Removed
// reports whether the cache still held the key.
func (r *CustomerRepository) Delete(ctx context.Context, id string) (Result, error) {
	key := customer.NormalizeID(id)

	existing, found, err := r.store.FindByKey(ctx, key)
	if err != nil {
		return Result{}, storeFailure(err, "delete", key)
	}
	if !found {
		return Result{Outcome: OutcomeNotFound}, nil
	}

	affected, err := r.store.Remove(ctx, existing)
	if err != nil {
		return Result{}, storeFailure(err, "delete", key)
	}
	if affected != 1 {
		return r.rejected("delete", key, affected), nil
	}

	entities, ok := r.entities()
	if !ok {
		return Result{Outcome: OutcomeCacheUnavailable, Affected: affected}, nil
	}

	existing.Normalize()
	return Result{
		Outcome:  OutcomeOK,
		Customer: existing,
		Affected: affected,
		Removed:  entities.Remove(key),
	}, nil
}

func (r *CustomerRepository) entities() (cache.EntityCache[string, *customer.Customer], bool) {
	return r.shared.Cache()
}

func (r *CustomerRepository) enumerate(ctx context.Context) ([]*customer.Customer, error) {
	all, err := r.store.EnumerateAll(ctx)
	if err != nil {
		return nil, err
	}

	normalized := make([]*customer.Customer, 0, len(all))
	for _, c := range all {
		cp := c.Clone()
		cp.Normalize()
		normalized = append(normalized, cp)
	}
	return normalized, nil
}

func (r *CustomerRepository) rejected(op, key string, affected int64) Result {
	glog.V(2).Infof("repositorycache: %s %s rejected by store, affected=%d", op, key, affected)
	return Result{Outcome: OutcomeStoreWriteRejected, Affected: affected}
}

func (r *CustomerRepository) raceLost(op, key string, affected int64) Result {
	glog.Warningf("repositorycache: %s %s stored but cache slot changed concurrently", op, key)
	return Result{Outcome: OutcomeCacheRaceLost, Affected: affected}
}

// storeFailure categorizes errors from stores that do not already do so.
func storeFailure(err error, op, key string) error {
	if goerrors.IsCategory(err, goerrors.CategoryInternal) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "repositorycache: "+op+" "+key)
}

// replaceCurrent resolves a Create that finds key already cached. The row was
// just inserted, so the cached value is stale. The resolver runs under the
// key's lock: the value it receives is current and the replace always applies.
func replaceCurrent(key string, next *customer.Customer) func(*customer.Customer) (*customer.Customer, bool) {
	return func(current *customer.Customer) (*customer.Customer, bool) {
		if current != next {
			glog.V(1).Infof("repositorycache: create %s replaced a stale cache entry", key)
		}
		return next, true
	}
}

func snapshot(values []*customer.Customer, keep func(*customer.Customer) bool) []*customer.Customer {
	out := make([]*customer.Customer, 0, len(values))
	for _, c := range values {
		if keep != nil && !keep(c) {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
