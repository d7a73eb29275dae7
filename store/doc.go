// Package store is the persistent side of the customer repository: a bun-backed
// unit-of-work Handle that applies inserts, updates and deletes and reports how
// many rows each one affected.
//
// A Handle is cheap to create and is meant to live for one unit of work (in
// practice one request). It wraps either a *bun.DB or a bun.Tx:
//
//	db, err := store.Open(ctx, store.DefaultConfig())
//	h := store.NewHandle(db)
//	affected, err := h.Insert(ctx, &customer.Customer{CustomerID: "NEWCO", CompanyName: "New Co"})
//
// Unique key violations are not errors at this layer. Insert reports them as
// zero affected rows so callers treat them like any other rejected write.
package store
