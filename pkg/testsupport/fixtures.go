package testsupport

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-customer-cache/customer"
)

//go:embed testdata/customers.json
var customersJSON []byte

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// Customers returns fresh copies of the Northwind customer fixtures:
// ALFKI, ANATR, ANTON, AROUT and BERGS.
func Customers(t testing.TB) []*customer.Customer {
	t.Helper()

	var customers []*customer.Customer
	if err := json.Unmarshal(customersJSON, &customers); err != nil {
		t.Fatalf("failed to unmarshal embedded customers: %v", err)
	}
	return customers
}

// CustomerByID returns the fixture customer with the given id.
func CustomerByID(t testing.TB, id string) *customer.Customer {
	t.Helper()

	for _, c := range Customers(t) {
		if c.CustomerID == id {
			return c
		}
	}
	t.Fatalf("no customer fixture %s", id)
	return nil
}

// SQLiteMemoryDSN returns a DSN for a private, shared-cache in-memory SQLite
// database named after the test, so parallel tests never share tables.
func SQLiteMemoryDSN(t testing.TB) string {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, t.Name())

	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
}
