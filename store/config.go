package store

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes the database connection.
type Config struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string

	// DSN is passed to sql.Open unchanged.
	DSN string

	// MaxOpenConns caps the connection pool. Zero leaves database/sql's default.
	MaxOpenConns int

	// ConnMaxIdleTime closes idle connections after this long. Zero keeps them.
	ConnMaxIdleTime time.Duration
}

// DefaultConfig points at a local Northwind SQLite file.
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "file:Northwind.db?cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return goerrors.New("store: unsupported driver "+c.Driver, goerrors.CategoryValidation)
	}
	if c.DSN == "" {
		return goerrors.New("store: DSN is required", goerrors.CategoryValidation)
	}
	if c.MaxOpenConns < 0 {
		return goerrors.New("store: MaxOpenConns must be non-negative", goerrors.CategoryValidation)
	}
	if c.ConnMaxIdleTime < 0 {
		return goerrors.New("store: ConnMaxIdleTime must be non-negative", goerrors.CategoryValidation)
	}
	return nil
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "store: open "+cfg.Driver)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	var db *bun.DB
	switch cfg.Driver {
	case DriverPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "store: ping "+cfg.Driver)
	}

	return db, nil
}

// CreateSchema creates the tables for models that do not exist yet.
func CreateSchema(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "store: create schema")
		}
	}
	return nil
}
