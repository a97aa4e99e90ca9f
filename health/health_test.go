package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/jonwraymond/postsync/querycache"
	"github.com/jonwraymond/postsync/request"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", map[string]Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.results); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_RegisterAndCheck(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("b", func(context.Context) Result { return Healthy("ok") }))
	agg.Register(NewCheckerFunc("a", func(context.Context) Result { return Degraded("slow") }))
	agg.Register(NewCheckerFunc("b", func(context.Context) Result { return Healthy("replaced") }))

	if got := agg.Names(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Names() = %v, want [b a]", got)
	}

	r, err := agg.Check(context.Background(), "b")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Message != "replaced" {
		t.Errorf("Message = %q, want replaced", r.Message)
	}
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v", err)
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	agg.Register(NewCheckerFunc("stuck", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return Healthy("late")
	}))

	results := agg.CheckAll(context.Background())
	r := results["stuck"]
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("result = %+v, want timeout", r)
	}
}

func TestReport_JSON(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("backend", func(context.Context) Result {
		return Unhealthy("down", ErrCheckFailed)
	}))
	agg.Register(NewCheckerFunc("cache", func(context.Context) Result { return Healthy("ok") }))

	var buf bytes.Buffer
	if err := agg.Report(context.Background()).WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Status != "unhealthy" {
		t.Errorf("status = %q", decoded.Status)
	}
	if len(decoded.Checks) != 2 || decoded.Checks[0].Name != "backend" || decoded.Checks[0].Error != ErrCheckFailed.Error() {
		t.Errorf("checks = %+v", decoded.Checks)
	}
}

func newClient(t *testing.T, h http.HandlerFunc) *request.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := request.New(srv.URL, request.WithRetry(request.RetryConfig{MaxAttempts: 1}))
	if err != nil {
		t.Fatalf("request.New() error = %v", err)
	}
	return c
}

func TestBackendChecker(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/posts" || r.URL.Query().Get("limit") != "1" {
				t.Errorf("probe = %s", r.URL)
			}
			_, _ = w.Write([]byte(`{"posts":[],"total":0,"skip":0,"limit":1}`))
		})
		if r := NewBackendChecker(c).Check(context.Background()); r.Status != StatusHealthy {
			t.Errorf("Status = %v, message %q", r.Status, r.Message)
		}
	})

	t.Run("server error", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		r := NewBackendChecker(c).Check(context.Background())
		if r.Status != StatusUnhealthy || r.Error == nil {
			t.Errorf("result = %+v, want unhealthy", r)
		}
		if r.Details["code"] == "" {
			t.Error("details should carry the error code")
		}
	})

	t.Run("breaker state", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)
		c, err := request.New(srv.URL,
			request.WithRetry(request.RetryConfig{MaxAttempts: 1}),
			request.WithBreaker(request.BreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour}),
		)
		if err != nil {
			t.Fatalf("request.New() error = %v", err)
		}
		r := NewBackendChecker(c).Check(context.Background())
		if r.Status != StatusUnhealthy || r.Details["breaker"] != "open" {
			t.Errorf("result = %+v, want unhealthy with open breaker", r)
		}
	})

	t.Run("slow", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(20 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		})
		r := NewBackendChecker(c).WithSlowThreshold(time.Millisecond).Check(context.Background())
		if r.Status != StatusDegraded {
			t.Errorf("Status = %v, want degraded", r.Status)
		}
	})
}

func TestCacheChecker(t *testing.T) {
	cache := querycache.New()
	defer cache.Close()
	ctx := context.Background()

	checker := NewCacheChecker(cache, 0.5)
	if r := checker.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("empty cache Status = %v", r.Status)
	}

	_ = querycache.SetData(cache, querycache.Key{"tags"}, []string{"a"}, querycache.DefaultFreshness)
	failing := querycache.Descriptor[int]{
		Key:   querycache.Key{"users", "detail", "1"},
		Fetch: func(context.Context) (int, error) { return 0, errors.New("boom") },
	}
	_, _ = querycache.Query(ctx, cache, failing)

	r := checker.Check(ctx)
	if r.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded at 1 of 2 errored", r.Status)
	}
	if r.Details["errors"] != 1 {
		t.Errorf("details = %v", r.Details)
	}

	if r := NewCacheChecker(nil, 0).Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("nil cache Status = %v", r.Status)
	}
}
