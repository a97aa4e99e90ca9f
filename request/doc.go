// Package request is the thin HTTP layer the rest of postsync talks through.
//
// It issues typed GET/POST/PUT/PATCH/DELETE calls against a REST backend,
// classifies failures into NetworkError and HTTPError values carrying a
// github.com/jmgilman/go/errors code, and retries idempotent reads on
// transient failures. It keeps no cache of its own.
package request
