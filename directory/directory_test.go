package directory

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-customer-cache/cache"
	"github.com/goliatone/go-customer-cache/pkg/testsupport"
	"github.com/goliatone/go-customer-cache/store"
)

var testSuppliers = []Supplier{
	{CompanyName: "Exotic Liquids", ContactName: "Charlotte Cooper", City: "London", Country: "UK"},
	{CompanyName: "New Orleans Cajun Delights", ContactName: "Shelley Burke", City: "New Orleans", Country: "USA"},
	{CompanyName: "Grandma Kelly's Homestead", ContactName: "Regina Murphy", City: "Ann Arbor", Country: "USA"},
	{CompanyName: "Tokyo Traders", ContactName: "Yoshi Nagase", City: "Tokyo", Country: "Japan"},
	{CompanyName: "Specialty Biscuits, Ltd.", ContactName: "Peter Wilson", City: "Manchester", Country: "UK"},
}

func int64p(v int64) *int64 { return &v }

var testEmployees = []Employee{
	{EmployeeID: 1, LastName: "Davolio", FirstName: "Nancy", Title: "Sales Representative", TitleOfCourtesy: "Ms.", City: "Seattle", Country: "USA", ReportsTo: int64p(2)},
	{EmployeeID: 2, LastName: "Fuller", FirstName: "Andrew", Title: "Vice President, Sales", TitleOfCourtesy: "Dr.", City: "Tacoma", Country: "USA"},
	{EmployeeID: 3, LastName: "Leverling", FirstName: "Janet", Title: "Sales Representative", TitleOfCourtesy: "Ms.", City: "Kirkland", Country: "USA", ReportsTo: int64p(2)},
	{EmployeeID: 5, LastName: "Buchanan", FirstName: "Steven", Title: "Sales Manager", TitleOfCourtesy: "Mr.", City: "London", Country: "UK", ReportsTo: int64p(2)},
}

// countingService counts fetches and can fail invalidation.
type countingService struct {
	cache.CacheService
	fetches     int32
	deleteError error
}

func (c *countingService) GetOrFetch(ctx context.Context, key string, fetchFn cache.FetchFn[any]) (any, error) {
	return c.CacheService.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		atomic.AddInt32(&c.fetches, 1)
		return fetchFn(ctx)
	})
}

func (c *countingService) DeleteByPrefix(ctx context.Context, prefix string) error {
	if c.deleteError != nil {
		return c.deleteError
	}
	return c.CacheService.DeleteByPrefix(ctx, prefix)
}

func (c *countingService) fetchCount() int32 {
	return atomic.LoadInt32(&c.fetches)
}

func newTestDirectory(t *testing.T) (*Directory, *countingService, bun.IDB) {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, DSN: testsupport.SQLiteMemoryDSN(t), MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.CreateSchema(ctx, db, (*Supplier)(nil), (*Employee)(nil)); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}

	suppliers := append([]Supplier(nil), testSuppliers...)
	if _, err := db.NewInsert().Model(&suppliers).Exec(ctx); err != nil {
		t.Fatalf("seed suppliers: %v", err)
	}
	employees := append([]Employee(nil), testEmployees...)
	if _, err := db.NewInsert().Model(&employees).Exec(ctx); err != nil {
		t.Fatalf("seed employees: %v", err)
	}

	base, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	svc := &countingService{CacheService: base}
	return New(db, svc, cache.NewNamespacedKeySerializer("northwind")), svc, db
}

func companies(suppliers []Supplier) []string {
	out := make([]string, len(suppliers))
	for i, s := range suppliers {
		out[i] = s.CompanyName
	}
	return out
}

func TestDirectory_Suppliers(t *testing.T) {
	ctx := context.Background()
	dir, svc, _ := newTestDirectory(t)

	got, err := dir.Suppliers(ctx)
	if err != nil {
		t.Fatalf("Suppliers: %v", err)
	}

	want := []string{
		"Tokyo Traders",
		"Exotic Liquids",
		"Specialty Biscuits, Ltd.",
		"Grandma Kelly's Homestead",
		"New Orleans Cajun Delights",
	}
	if !reflect.DeepEqual(companies(got), want) {
		t.Errorf("Suppliers() = %v, want %v", companies(got), want)
	}
	for _, s := range got {
		if s.SupplierID == 0 {
			t.Errorf("supplier %q has no id", s.CompanyName)
		}
	}

	if _, err := dir.Suppliers(ctx); err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	if n := svc.fetchCount(); n != 1 {
		t.Errorf("expected 1 fetch, got %d", n)
	}
}

func TestDirectory_SuppliersReturnsCopies(t *testing.T) {
	ctx := context.Background()
	dir, _, _ := newTestDirectory(t)

	first, err := dir.Suppliers(ctx)
	if err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	first[0].CompanyName = "mutated"

	second, err := dir.Suppliers(ctx)
	if err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	if second[0].CompanyName != "Tokyo Traders" {
		t.Errorf("caller mutation leaked into the cache: %q", second[0].CompanyName)
	}
}

func TestDirectory_SuppliersIn(t *testing.T) {
	ctx := context.Background()
	dir, svc, _ := newTestDirectory(t)

	tests := []struct {
		country string
		want    []string
	}{
		{"UK", []string{"Exotic Liquids", "Specialty Biscuits, Ltd."}},
		{"uk", []string{"Exotic Liquids", "Specialty Biscuits, Ltd."}},
		{"USA", []string{"Grandma Kelly's Homestead", "New Orleans Cajun Delights"}},
		{"Brazil", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			got, err := dir.SuppliersIn(ctx, tt.country)
			if err != nil {
				t.Fatalf("SuppliersIn: %v", err)
			}
			if !reflect.DeepEqual(companies(got), tt.want) {
				t.Errorf("SuppliersIn(%q) = %v, want %v", tt.country, companies(got), tt.want)
			}
		})
	}

	// "UK" and "uk" share a key
	if n := svc.fetchCount(); n != 3 {
		t.Errorf("expected 3 fetches, got %d", n)
	}
}

func TestDirectory_AddSupplierInvalidates(t *testing.T) {
	ctx := context.Background()
	dir, svc, _ := newTestDirectory(t)

	if _, err := dir.Suppliers(ctx); err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	if _, err := dir.SuppliersIn(ctx, "UK"); err != nil {
		t.Fatalf("SuppliersIn: %v", err)
	}
	if _, err := dir.Employees(ctx); err != nil {
		t.Fatalf("Employees: %v", err)
	}

	input := &Supplier{CompanyName: "Cooperativa de Quesos 'Las Cabras'", City: "Oviedo", Country: "Spain"}
	added, err := dir.AddSupplier(ctx, input)
	if err != nil {
		t.Fatalf("AddSupplier: %v", err)
	}
	if added.SupplierID == 0 {
		t.Error("expected an assigned supplier id")
	}
	if input.SupplierID != 0 {
		t.Error("AddSupplier must not modify its argument")
	}

	before := svc.fetchCount()
	got, err := dir.Suppliers(ctx)
	if err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	if len(got) != len(testSuppliers)+1 {
		t.Errorf("expected %d suppliers after add, got %d", len(testSuppliers)+1, len(got))
	}
	if _, err := dir.SuppliersIn(ctx, "UK"); err != nil {
		t.Fatalf("SuppliersIn: %v", err)
	}
	if n := svc.fetchCount() - before; n != 2 {
		t.Errorf("expected both supplier listings refetched, got %d fetches", n)
	}

	before = svc.fetchCount()
	if _, err := dir.Employees(ctx); err != nil {
		t.Fatalf("Employees: %v", err)
	}
	if n := svc.fetchCount() - before; n != 0 {
		t.Errorf("employee listing should stay cached, got %d fetches", n)
	}
}

func TestDirectory_AddSupplierInvalidationFailure(t *testing.T) {
	ctx := context.Background()
	dir, svc, _ := newTestDirectory(t)
	svc.deleteError = errors.New("cache offline")

	if _, err := dir.AddSupplier(ctx, &Supplier{CompanyName: "Pavlova, Ltd.", Country: "Australia"}); err != nil {
		t.Fatalf("invalidation failures must not fail AddSupplier: %v", err)
	}
}

func TestDirectory_AddSupplierValidation(t *testing.T) {
	ctx := context.Background()
	dir, _, db := newTestDirectory(t)

	tests := []struct {
		name     string
		supplier *Supplier
	}{
		{"nil", nil},
		{"missing company", &Supplier{Country: "Spain"}},
		{"country too long", &Supplier{CompanyName: "Far Away", Country: "The Federated States"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dir.AddSupplier(ctx, tt.supplier)
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	n, err := db.NewSelect().Model((*Supplier)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != len(testSuppliers) {
		t.Errorf("invalid suppliers reached the database: %d rows", n)
	}
}

func TestDirectory_Employees(t *testing.T) {
	ctx := context.Background()
	dir, _, _ := newTestDirectory(t)

	got, err := dir.Employees(ctx)
	if err != nil {
		t.Fatalf("Employees: %v", err)
	}

	want := []string{"Mr. Steven Buchanan", "Ms. Nancy Davolio", "Dr. Andrew Fuller", "Ms. Janet Leverling"}
	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.DisplayName()
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Employees() = %v, want %v", names, want)
	}

	if got[2].ReportsTo != nil {
		t.Errorf("Fuller reports to nobody, got %d", *got[2].ReportsTo)
	}
	if got[0].ReportsTo == nil || *got[0].ReportsTo != 2 {
		t.Errorf("Buchanan reports to Fuller, got %v", got[0].ReportsTo)
	}

	*got[0].ReportsTo = 99
	again, err := dir.Employees(ctx)
	if err != nil {
		t.Fatalf("Employees: %v", err)
	}
	if *again[0].ReportsTo != 2 {
		t.Errorf("caller mutation leaked into the cache: %d", *again[0].ReportsTo)
	}
}

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Supplier", "supplier"},
		{"Employee", "employee"},
		{"OrderDetail", "order_detail"},
		{"HTTPServer", "http_server"},
		{"Customer2Region", "customer_2_region"},
		{"already_snake", "already_snake"},
		{"with-dash and space", "with_dash_and_space"},
		{"*Pointer[T]", "pointer_t"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := toSnake(tt.in); got != tt.want {
			t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := namespaceOf(&Supplier{}); got != "supplier" {
		t.Errorf("namespaceOf(*Supplier) = %q", got)
	}
}
