// Package users describes the user entity: the lightweight author list the
// post table joins against, the full profile shown in the profile modal, and
// the cache descriptors for both.
package users
