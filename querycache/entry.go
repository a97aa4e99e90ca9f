package querycache

import "time"

// Status is the lifecycle state of a cache entry.
type Status string

// Entry statuses.
const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusFresh    Status = "fresh"
	StatusStale    Status = "stale"
	StatusError    Status = "error"
)

// Entry is a read-only snapshot of one cached key.
type Entry struct {
	Key       Key
	Data      any
	HasData   bool
	FetchedAt time.Time
	Freshness time.Duration
	Status    Status

	// Err is the last fetch error while Status is StatusError.
	Err error
}

// IsFresh reports whether the entry may be served at now without a fetch.
func (e Entry) IsFresh(now time.Time) bool {
	return e.HasData && e.Status == StatusFresh && now.Sub(e.FetchedAt) < e.Freshness
}

// entry is the mutable record owned by Cache; guarded by Cache.mu.
type entry struct {
	Entry

	// writes counts local writes (SetData, patches, rollbacks). A fetch
	// that started before a local write does not overwrite it.
	writes uint64

	// invalidations counts Invalidate calls. A fetch that settles after an
	// invalidation stores its data but leaves the entry stale.
	invalidations uint64

	// inflight counts fetches running for this entry.
	inflight int
}

func (e *entry) snapshot() Entry {
	return e.Entry
}
