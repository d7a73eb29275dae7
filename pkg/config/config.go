// Package config loads the customer cache service configuration from an INI file.
//
//	[store]
//	driver = sqlite3
//	dsn = file:Northwind.db?cache=shared&_foreign_keys=on
//	max_open_conns = 1
//	conn_max_idle_time = 5m
//
//	[directory_cache]
//	capacity = 1000
//	num_shards = 16
//	ttl = 5m
//	eviction_percentage = 10
//	eviction_interval = 0s
//	missing_record_storage = false
//	early_refresh = true
//	early_refresh_min = 1m
//	early_refresh_max = 2m
//	early_refresh_sync = 4m
//	early_refresh_retry = 100ms
//
//	[customer_cache]
//	presize_hint = 128
//
// Every option is optional; missing options keep their defaults.
package config

import (
	"fmt"
	"time"

	ini "github.com/robfig/config"

	"github.com/goliatone/go-customer-cache/cache"
	"github.com/goliatone/go-customer-cache/store"
)

// Section names.
const (
	StoreSection          = "store"
	DirectoryCacheSection = "directory_cache"
	CustomerCacheSection  = "customer_cache"
)

// Config groups the settings of every component.
type Config struct {
	Store          store.Config
	DirectoryCache cache.Config
	CustomerCache  cache.EntityConfig
}

// Error reports a bad option. Section and Option are empty for file-level errors.
type Error struct {
	Section string
	Option  string
	Err     error
}

func (e *Error) Error() string {
	if e.Option == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config: [%s] %s: %v", e.Section, e.Option, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store:          store.DefaultConfig(),
		DirectoryCache: cache.DefaultConfig(),
		CustomerCache:  cache.DefaultEntityConfig(),
	}
}

// Validate checks each component configuration.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return &Error{Section: StoreSection, Err: err}
	}
	if err := c.DirectoryCache.Validate(); err != nil {
		return &Error{Section: DirectoryCacheSection, Err: err}
	}
	if err := c.CustomerCache.Validate(); err != nil {
		return &Error{Section: CustomerCacheSection, Err: err}
	}
	return nil
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	file, err := ini.ReadDefault(path)
	if err != nil {
		return Config{}, &Error{Err: err}
	}
	return parse(file)
}

func parse(file *ini.Config) (Config, error) {
	cfg := Default()
	r := &reader{file: file}

	r.section = StoreSection
	r.readString("driver", &cfg.Store.Driver)
	r.readString("dsn", &cfg.Store.DSN)
	r.readInt("max_open_conns", &cfg.Store.MaxOpenConns)
	r.readDuration("conn_max_idle_time", &cfg.Store.ConnMaxIdleTime)

	r.section = DirectoryCacheSection
	dc := &cfg.DirectoryCache
	r.readInt("capacity", &dc.Capacity)
	r.readInt("num_shards", &dc.NumShards)
	r.readDuration("ttl", &dc.TTL)
	r.readInt("eviction_percentage", &dc.EvictionPercentage)
	r.readDuration("eviction_interval", &dc.EvictionInterval)
	r.readBool("missing_record_storage", &dc.MissingRecordStorage)

	earlyRefresh := dc.EarlyRefresh != nil
	r.readBool("early_refresh", &earlyRefresh)
	if !earlyRefresh {
		dc.EarlyRefresh = nil
	} else {
		er := cache.EarlyRefreshConfig{}
		if dc.EarlyRefresh != nil {
			er = *dc.EarlyRefresh
		}
		r.readDuration("early_refresh_min", &er.MinAsyncRefreshTime)
		r.readDuration("early_refresh_max", &er.MaxAsyncRefreshTime)
		r.readDuration("early_refresh_sync", &er.SyncRefreshTime)
		r.readDuration("early_refresh_retry", &er.RetryBaseDelay)
		dc.EarlyRefresh = &er
	}

	r.section = CustomerCacheSection
	r.readInt("presize_hint", &cfg.CustomerCache.PresizeHint)

	if r.err != nil {
		return Config{}, r.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// reader copies present options into their destinations and keeps the first error.
type reader struct {
	file    *ini.Config
	section string
	err     error
}

func (r *reader) present(option string) bool {
	return r.err == nil && r.file.HasOption(r.section, option)
}

func (r *reader) fail(option string, err error) {
	r.err = &Error{Section: r.section, Option: option, Err: err}
}

func (r *reader) readString(option string, dst *string) {
	if !r.present(option) {
		return
	}
	v, err := r.file.String(r.section, option)
	if err != nil {
		r.fail(option, err)
		return
	}
	*dst = v
}

func (r *reader) readInt(option string, dst *int) {
	if !r.present(option) {
		return
	}
	v, err := r.file.Int(r.section, option)
	if err != nil {
		r.fail(option, err)
		return
	}
	*dst = v
}

func (r *reader) readBool(option string, dst *bool) {
	if !r.present(option) {
		return
	}
	v, err := r.file.Bool(r.section, option)
	if err != nil {
		r.fail(option, err)
		return
	}
	*dst = v
}

func (r *reader) readDuration(option string, dst *time.Duration) {
	if !r.present(option) {
		return
	}
	s, err := r.file.String(r.section, option)
	if err != nil {
		r.fail(option, err)
		return
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		r.fail(option, err)
		return
	}
	*dst = v
}
