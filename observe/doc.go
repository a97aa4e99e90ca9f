// Package observe provides observability primitives for the posts client.
//
// It is a pure instrumentation library: it never issues requests or touches
// the cache itself. The request layer wraps calls with Middleware, and the
// cache reports hits, misses, fetches and rollbacks through CacheMetrics.
package observe
