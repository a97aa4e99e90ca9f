package health

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonwraymond/postsync/request"
)

// DefaultSlowThreshold is the probe latency above which the backend is
// reported degraded.
const DefaultSlowThreshold = 2 * time.Second

// BackendChecker probes the REST backend with a one-item post list.
type BackendChecker struct {
	client *request.Client
	slow   time.Duration
}

// NewBackendChecker creates a checker over client.
func NewBackendChecker(client *request.Client) *BackendChecker {
	return &BackendChecker{client: client, slow: DefaultSlowThreshold}
}

// WithSlowThreshold sets the degraded latency threshold.
func (b *BackendChecker) WithSlowThreshold(d time.Duration) *BackendChecker {
	if d > 0 {
		b.slow = d
	}
	return b
}

// Name implements Checker.
func (b *BackendChecker) Name() string { return "backend" }

// Check implements Checker.
func (b *BackendChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := b.client.Do(ctx, http.MethodGet, "/posts", url.Values{"limit": {"1"}}, nil, nil)
	latency := time.Since(start)

	details := map[string]any{
		"base_url":   b.client.BaseURL(),
		"latency_ms": latency.Milliseconds(),
	}
	if br := b.client.Breaker(); br != nil {
		details["breaker"] = br.State().String()
	}
	if err != nil {
		details["code"] = string(request.Code(err))
		return Unhealthy("backend unreachable", err).WithDetails(details)
	}
	if latency > b.slow {
		return Degraded(fmt.Sprintf("backend slow: %s", latency.Round(time.Millisecond))).WithDetails(details)
	}
	return Healthy("backend reachable").WithDetails(details)
}
