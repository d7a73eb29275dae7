package directory

import (
	"context"
	"strings"

	"github.com/golang/glog"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-customer-cache/cache"
)

var (
	supplierNamespace = namespaceOf(Supplier{})
	employeeNamespace = namespaceOf(Employee{})
)

// Directory lists Northwind suppliers and employees through a read-through
// cache. Listings come back as fresh slices; callers may modify them.
type Directory struct {
	db   bun.IDB
	svc  cache.CacheService
	keys cache.KeySerializer
}

// New returns a Directory reading from db and caching listings in svc under
// keys built by keys.
func New(db bun.IDB, svc cache.CacheService, keys cache.KeySerializer) *Directory {
	return &Directory{db: db, svc: svc, keys: keys}
}

// Suppliers lists every supplier ordered by country, then company name.
func (d *Directory) Suppliers(ctx context.Context) ([]Supplier, error) {
	key := d.key(supplierNamespace, "Suppliers")

	rows, err := cache.GetOrFetch(ctx, d.svc, key, func(ctx context.Context) ([]Supplier, error) {
		var out []Supplier
		err := d.db.NewSelect().
			Model(&out).
			OrderExpr("country ASC, company_name ASC").
			Scan(ctx)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "directory: list suppliers")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]Supplier{}, rows...), nil
}

// SuppliersIn lists the suppliers of one country, ignoring case, ordered by
// company name.
func (d *Directory) SuppliersIn(ctx context.Context, country string) ([]Supplier, error) {
	country = strings.ToLower(country)
	key := d.key(supplierNamespace, "SuppliersIn", country)

	rows, err := cache.GetOrFetch(ctx, d.svc, key, func(ctx context.Context) ([]Supplier, error) {
		var out []Supplier
		err := d.db.NewSelect().
			Model(&out).
			Where("lower(country) = ?", country).
			OrderExpr("company_name ASC").
			Scan(ctx)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "directory: list suppliers in "+country)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]Supplier{}, rows...), nil
}

// AddSupplier inserts s and drops every cached supplier listing. The returned
// supplier carries the id assigned by the database; s is left unchanged.
func (d *Directory) AddSupplier(ctx context.Context, s *Supplier) (*Supplier, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	row := *s
	row.SupplierID = 0
	if _, err := d.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "directory: insert supplier "+s.CompanyName)
	}

	prefix := d.prefix(supplierNamespace)
	if err := d.svc.DeleteByPrefix(ctx, prefix); err != nil {
		glog.Errorf("directory: invalidate %s after adding supplier %d: %v", prefix, row.SupplierID, err)
	}

	glog.V(2).Infof("directory: added supplier %d %q", row.SupplierID, row.CompanyName)
	return &row, nil
}

// Employees lists every employee ordered by last name, then first name.
func (d *Directory) Employees(ctx context.Context) ([]Employee, error) {
	key := d.key(employeeNamespace, "Employees")

	rows, err := cache.GetOrFetch(ctx, d.svc, key, func(ctx context.Context) ([]Employee, error) {
		var out []Employee
		err := d.db.NewSelect().
			Model(&out).
			OrderExpr("last_name ASC, first_name ASC").
			Scan(ctx)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "directory: list employees")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Employee, len(rows))
	for i, e := range rows {
		out[i] = copyEmployee(e)
	}
	return out, nil
}

func (d *Directory) key(namespace, method string, args ...any) string {
	return d.keys.SerializeKey(namespace+cache.KeySeparator+method, args...)
}

func (d *Directory) prefix(namespace string) string {
	return d.keys.SerializeKey(namespace) + cache.KeySeparator
}
