package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-customer-cache/internal/cacheinfra"
)

// Config exposes the read-through cache options used by the directory listings.
type Config struct {
	Capacity             int
	NumShards            int
	TTL                  time.Duration
	EvictionPercentage   int
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// EntityConfig configures the process-wide entity cache. The entity cache
// never evicts, so sizing is the only knob.
type EntityConfig struct {
	// PresizeHint is the number of entries the cache allocates room for up front.
	PresizeHint int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// DefaultEntityConfig returns the entity cache defaults.
func DefaultEntityConfig() EntityConfig {
	return EntityConfig{PresizeHint: cacheinfra.DefaultMapConfig().PresizeHint}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// Validate checks whether the entity cache configuration is valid.
func (c EntityConfig) Validate() error {
	return cacheinfra.MapConfig{PresizeHint: c.PresizeHint}.Validate()
}

// NewCacheService constructs the default read-through cache service using the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return &sturdycFacade{svc: svc}, nil
}

// NewEntityCache constructs an empty EntityCache backed by a concurrent hash map.
func NewEntityCache[K comparable, V comparable](cfg EntityConfig) (EntityCache[K, V], error) {
	c, err := cacheinfra.NewMapCache[K, V](cacheinfra.MapConfig{PresizeHint: cfg.PresizeHint})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c Config) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}

// sturdycFacade adapts the internal service to the FetchFn-typed interface.
type sturdycFacade struct {
	svc *cacheinfra.SturdycService
}

func (f *sturdycFacade) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[any]) (any, error) {
	return f.svc.GetOrFetch(ctx, key, fetchFn)
}

func (f *sturdycFacade) Delete(ctx context.Context, key string) error {
	return f.svc.Delete(ctx, key)
}

func (f *sturdycFacade) DeleteByPrefix(ctx context.Context, prefix string) error {
	return f.svc.DeleteByPrefix(ctx, prefix)
}
