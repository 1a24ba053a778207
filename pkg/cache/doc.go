// Package cache provides a generic in-process LRU cache with optional
// per-entry expiry. The tenant registry uses it to keep resolved tenants
// in memory between requests.
package cache
