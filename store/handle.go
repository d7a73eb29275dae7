package store

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/golang/glog"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-customer-cache/customer"
)

// keyMatch compares a stored customer id with a normalized one.
const keyMatch = "upper(customer_id) = ?"

// Stats counts the operations a Handle performed.
type Stats struct {
	Inserts int64
	Updates int64
	Deletes int64
	Selects int64
}

// Handle is a unit-of-work view over a database for customer records.
type Handle struct {
	id uuid.UUID
	db bun.IDB

	inserts atomic.Int64
	updates atomic.Int64
	deletes atomic.Int64
	selects atomic.Int64
}

// NewHandle creates a handle over db, which may be a *bun.DB or a bun.Tx.
func NewHandle(db bun.IDB) *Handle {
	return &Handle{id: uuid.New(), db: db}
}

// ID identifies the handle in logs.
func (h *Handle) ID() string {
	return h.id.String()
}

// Stats returns the statements issued so far.
func (h *Handle) Stats() Stats {
	return Stats{
		Inserts: h.inserts.Load(),
		Updates: h.updates.Load(),
		Deletes: h.deletes.Load(),
		Selects: h.selects.Load(),
	}
}

// Insert adds c and returns the number of inserted rows. A duplicate key
// yields 0 and no error.
func (h *Handle) Insert(ctx context.Context, c *customer.Customer) (int64, error) {
	h.inserts.Add(1)

	// the primary key is case-sensitive, ids are not
	exists, err := h.db.NewSelect().
		Model((*customer.Customer)(nil)).
		Where(keyMatch, customer.NormalizeID(c.CustomerID)).
		Exists(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "store: insert customer "+c.CustomerID)
	}
	if exists {
		glog.V(2).Infof("store[%s]: insert %s rejected: duplicate key", h.id, c.CustomerID)
		return 0, nil
	}

	res, err := h.db.NewInsert().Model(c).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			glog.V(2).Infof("store[%s]: insert %s rejected: duplicate key", h.id, c.CustomerID)
			return 0, nil
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "store: insert customer "+c.CustomerID)
	}

	return h.affected(res, "insert", c.CustomerID)
}

// Update writes every column of c except the key to the row whose CustomerID
// matches c's, ignoring case. The stored key keeps its casing.
func (h *Handle) Update(ctx context.Context, c *customer.Customer) (int64, error) {
	h.updates.Add(1)

	res, err := h.db.NewUpdate().
		Model(c).
		ExcludeColumn("customer_id").
		Where(keyMatch, customer.NormalizeID(c.CustomerID)).
		Exec(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "store: update customer "+c.CustomerID)
	}

	return h.affected(res, "update", c.CustomerID)
}

// FindByKey loads the customer whose id matches key, ignoring case. The
// returned customer carries the id as stored.
func (h *Handle) FindByKey(ctx context.Context, key string) (*customer.Customer, bool, error) {
	h.selects.Add(1)

	c := new(customer.Customer)
	err := h.db.NewSelect().
		Model(c).
		Where(keyMatch, customer.NormalizeID(key)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "store: find customer "+key)
	}
	return c, true, nil
}

// Remove deletes the row whose CustomerID matches c's, ignoring case.
func (h *Handle) Remove(ctx context.Context, c *customer.Customer) (int64, error) {
	h.deletes.Add(1)

	res, err := h.db.NewDelete().
		Model((*customer.Customer)(nil)).
		Where(keyMatch, customer.NormalizeID(c.CustomerID)).
		Exec(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "store: delete customer "+c.CustomerID)
	}

	return h.affected(res, "delete", c.CustomerID)
}

// EnumerateAll returns every customer ordered by id.
func (h *Handle) EnumerateAll(ctx context.Context) ([]*customer.Customer, error) {
	h.selects.Add(1)

	var customers []*customer.Customer
	if err := h.db.NewSelect().Model(&customers).Order("customer_id ASC").Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "store: enumerate customers")
	}
	return customers, nil
}

func (h *Handle) affected(res sql.Result, op, key string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "store: "+op+" rows affected")
	}
	glog.V(2).Infof("store[%s]: %s %s affected=%d", h.id, op, key, n)
	return n, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
