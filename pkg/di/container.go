package di

import (
	"context"

	"github.com/golang/glog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-customer-cache/cache"
	"github.com/goliatone/go-customer-cache/customer"
	"github.com/goliatone/go-customer-cache/directory"
	"github.com/goliatone/go-customer-cache/pkg/config"
	"github.com/goliatone/go-customer-cache/repositorycache"
	"github.com/goliatone/go-customer-cache/store"
)

// Container wires the database, the shared customer cache and the directory
// listing cache. It owns one customer cache for its lifetime; every repository
// it hands out shares it.
type Container struct {
	config        config.Config
	db            *bun.DB
	customers     *repositorycache.Cache
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	directory     *directory.Directory
}

// NewContainer validates cfg, opens the database and builds the caches. The
// customer cache is hydrated lazily by the first NewCustomerRepository call.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheService, err := cache.NewCacheService(cfg.DirectoryCache)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	keySerializer := cache.NewDefaultKeySerializer()

	glog.Infof("di: container ready (driver=%s, directory cache capacity=%d)", cfg.Store.Driver, cfg.DirectoryCache.Capacity)

	return &Container{
		config:        cfg,
		db:            db,
		customers:     repositorycache.NewCache(cfg.CustomerCache),
		cacheService:  cacheService,
		keySerializer: keySerializer,
		directory:     directory.New(db, cacheService, keySerializer),
	}, nil
}

// NewContainerWithDefaults creates a container from config.Default.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, config.Default())
}

// NewContainerFromFile loads the INI configuration at path and creates a container.
func NewContainerFromFile(ctx context.Context, path string) (*Container, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, cfg)
}

// EnsureSchema creates the customer, supplier and employee tables if missing.
func (c *Container) EnsureSchema(ctx context.Context) error {
	return store.CreateSchema(ctx, c.db,
		(*customer.Customer)(nil),
		(*directory.Supplier)(nil),
		(*directory.Employee)(nil),
	)
}

// NewCustomerRepository starts a unit of work: a repository over a fresh store
// handle, bound to the container's customer cache.
func (c *Container) NewCustomerRepository(ctx context.Context) (*repositorycache.CustomerRepository, error) {
	handle := store.NewHandle(c.db)
	glog.V(2).Infof("di: customer repository on handle %s", handle.ID())
	return repositorycache.NewWithCache(ctx, handle, c.customers)
}

// CustomerCache returns the shared customer cache holder.
func (c *Container) CustomerCache() *repositorycache.Cache {
	return c.customers
}

// Directory returns the supplier and employee lister.
func (c *Container) Directory() *directory.Directory {
	return c.directory
}

// CacheService returns the directory listing cache.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the key serializer used for listing keys.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// DB returns the database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Close releases the database.
func (c *Container) Close() error {
	return c.db.Close()
}
