package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/postsync/querycache"
)

// DefaultErrorRatio is the share of errored entries above which the cache
// is reported degraded.
const DefaultErrorRatio = 0.5

// CacheChecker reports the query cache degraded when too many of its
// entries hold a failed fetch.
type CacheChecker struct {
	cache     *querycache.Cache
	threshold float64
}

// NewCacheChecker creates a checker over cache. A threshold outside (0, 1]
// uses DefaultErrorRatio.
func NewCacheChecker(cache *querycache.Cache, threshold float64) *CacheChecker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultErrorRatio
	}
	return &CacheChecker{cache: cache, threshold: threshold}
}

// Name implements Checker.
func (c *CacheChecker) Name() string { return "cache" }

// Check implements Checker.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}
	if c.cache == nil {
		return Unhealthy("no cache", querycache.ErrNilCache)
	}

	s := c.cache.Stats()
	details := map[string]any{
		"entries":   s.Entries,
		"fresh":     s.Fresh,
		"stale":     s.Stale,
		"fetching":  s.Fetching,
		"errors":    s.Errors,
		"hits":      s.Hits,
		"misses":    s.Misses,
		"fetches":   s.Fetches,
		"rollbacks": s.Rollbacks,
	}
	if s.Entries == 0 {
		return Healthy("cache empty").WithDetails(details)
	}

	ratio := float64(s.Errors) / float64(s.Entries)
	details["error_ratio"] = ratio
	if ratio >= c.threshold {
		return Degraded(fmt.Sprintf("%d of %d entries failed", s.Errors, s.Entries)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries", s.Entries)).WithDetails(details)
}
