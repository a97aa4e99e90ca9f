package observe

import (
	"context"
	"time"
)

// Func is the signature of an instrumented unit of work.
type Func func(ctx context.Context) error

// Middleware wraps client operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Context: the span context is propagated into fn.
//   - Errors: errors from fn are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-op implementations.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Metrics returns the metrics recorder used by this middleware.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the base logger used by this middleware.
func (m *Middleware) Logger() Logger { return m.logger }

// Run executes fn inside a span and records its outcome.
func (m *Middleware) Run(ctx context.Context, meta OperationMeta, fn Func) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordOperation(ctx, meta, duration, err)

	opLogger := m.logger.WithOperation(meta)
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		opLogger.Error(ctx, meta.Kind+" failed", fields...)
	} else {
		opLogger.Debug(ctx, meta.Kind+" completed", fields...)
	}

	return err
}
