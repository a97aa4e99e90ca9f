package observe

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/codes"
)

func newTestMiddleware(t *testing.T) (*Middleware, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	return NewMiddleware(NewTracer(tp.Tracer("test")), metrics, nil), recorder, reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestMiddleware_SuccessPath(t *testing.T) {
	mw, recorder, reader := newTestMiddleware(t)

	meta := OperationMeta{Kind: KindRequest, Entity: "posts", Name: "GET", Target: "/posts"}
	calls := 0
	err := mw.Run(context.Background(), meta, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "postsync.request.posts.GET" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", spans[0].Status().Code)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if findMetric(rm, "postsync.op.total") == nil {
		t.Error("postsync.op.total not recorded")
	}
	if findMetric(rm, "postsync.op.duration_ms") == nil {
		t.Error("postsync.op.duration_ms not recorded")
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	mw, recorder, reader := newTestMiddleware(t)

	wantErr := errors.New("boom")
	err := mw.Run(context.Background(), OperationMeta{Kind: KindMutation, Name: "delete"}, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Fatalf("expected one errored span, got %d", len(spans))
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if findMetric(rm, "postsync.op.errors") == nil {
		t.Error("postsync.op.errors not recorded")
	}
}

func TestMetrics_RecordCache(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	ctx := context.Background()
	metrics.RecordCache(ctx, CacheHit, "posts")
	metrics.RecordCache(ctx, CacheRollback, "comments")
	metrics.RecordCache(ctx, CacheOutcome("bogus"), "posts")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	for _, name := range []string{"postsync.cache.hits", "postsync.cache.rollbacks"} {
		if findMetric(rm, name) == nil {
			t.Errorf("%s not recorded", name)
		}
	}
}

func TestNopMiddleware(t *testing.T) {
	mw := NopMiddleware()
	if err := mw.Run(context.Background(), OperationMeta{Kind: KindQuery, Name: "x"}, func(context.Context) error { return nil }); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
