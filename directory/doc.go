// Package directory lists Northwind suppliers and employees.
//
// Listings are served read-through from a cache.CacheService. Keys have the
// form <namespace>::<Method>::<args>, where the namespace is the snake_case
// model name ("supplier", "employee"), optionally preceded by the key
// serializer's own namespace. Adding a supplier invalidates every key under
// the supplier namespace; failures to invalidate are logged and the listing
// expires with the cache TTL.
package directory
