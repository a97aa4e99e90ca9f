// Package app wires one postsync session: configuration, telemetry, the
// request client, the query cache, the entity APIs and the filter and
// selection stores. Its methods are the management flows a posts manager
// screen drives, each one a read through the cache or a mutation with an
// optimistic patch.
package app
