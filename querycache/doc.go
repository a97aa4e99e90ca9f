// Package querycache is the single in-memory cache behind every read and
// write postsync performs.
//
// Reads go through Query: a key that is still inside its freshness window
// is served from memory, otherwise one fetch per key is started and every
// concurrent reader of that key waits on it. Writes go through Mutate: an
// optimistic patch is applied to the cached value before the network call,
// rolled back exactly on failure, and followed by scoped invalidation on
// success.
//
// A Cache is an explicit object with a lifecycle (New, Close); there is no
// package-level instance.
package querycache
