package querycache

import "time"

// DefaultFreshness asks the cache to use its policy default for a descriptor.
const DefaultFreshness time.Duration = -1

// FreshnessPolicy decides how long fetched data is served without re-fetching.
type FreshnessPolicy struct {
	// Default applies to descriptors that ask for DefaultFreshness.
	// Zero means always revalidate.
	Default time.Duration

	// Max caps every freshness window. Zero means no cap.
	Max time.Duration
}

// DefaultFreshnessPolicy returns the policy used when none is configured:
// always revalidate by default, windows capped at one hour.
func DefaultFreshnessPolicy() FreshnessPolicy {
	return FreshnessPolicy{
		Default: 0,
		Max:     time.Hour,
	}
}

// Effective returns the window to use for a descriptor's requested freshness.
// Negative values take the default; the result is clamped to Max.
func (p FreshnessPolicy) Effective(requested time.Duration) time.Duration {
	window := requested
	if window < 0 {
		window = p.Default
	}
	if window < 0 {
		window = 0
	}
	if p.Max > 0 && window > p.Max {
		window = p.Max
	}
	return window
}
