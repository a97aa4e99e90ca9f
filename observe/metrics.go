package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheOutcome labels a cache event for metrics.
type CacheOutcome string

// Cache outcomes recorded by the query cache.
const (
	CacheHit      CacheOutcome = "hit"
	CacheMiss     CacheOutcome = "miss"
	CacheFetch    CacheOutcome = "fetch"
	CacheRollback CacheOutcome = "rollback"
)

// Metrics records client metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records a request, query or mutation with its duration and error status.
	RecordOperation(ctx context.Context, meta OperationMeta, duration time.Duration, err error)

	// RecordCache records a single cache event for the given entity.
	RecordCache(ctx context.Context, outcome CacheOutcome, entity string)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheCounts  map[CacheOutcome]metric.Int64Counter
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"postsync.op.total",
		metric.WithDescription("Total number of client operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"postsync.op.errors",
		metric.WithDescription("Total number of failed client operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"postsync.op.duration_ms",
		metric.WithDescription("Client operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheCounts := make(map[CacheOutcome]metric.Int64Counter, 4)
	for _, outcome := range []CacheOutcome{CacheHit, CacheMiss, CacheFetch, CacheRollback} {
		counter, err := meter.Int64Counter(
			"postsync.cache."+string(outcome)+"s",
			metric.WithDescription("Query cache "+string(outcome)+" events"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			return nil, err
		}
		cacheCounts[outcome] = counter
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheCounts:  cacheCounts,
	}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, meta OperationMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("op.kind", meta.Kind),
		attribute.String("op.id", meta.OperationID()),
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCache(ctx context.Context, outcome CacheOutcome, entity string) {
	counter, ok := m.cacheCounts[outcome]
	if !ok {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.entity", entity)))
}

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics implementation that records nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordOperation(context.Context, OperationMeta, time.Duration, error) {}
func (noopMetrics) RecordCache(context.Context, CacheOutcome, string)                   {}
