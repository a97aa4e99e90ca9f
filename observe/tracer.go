package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Operation kinds.
const (
	KindRequest  = "request"
	KindQuery    = "query"
	KindMutation = "mutation"
)

// OperationMeta describes a unit of client work for telemetry purposes.
type OperationMeta struct {
	Kind   string // request|query|mutation (required)
	Entity string // posts, comments, users, tags (optional)
	Name   string // HTTP method, descriptor or mutation name (required)
	Target string // request path or cache key (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: postsync.<kind>.<entity>.<name> or postsync.<kind>.<name>
func (m OperationMeta) SpanName() string {
	if m.Entity != "" {
		return "postsync." + m.Kind + "." + m.Entity + "." + m.Name
	}
	return "postsync." + m.Kind + "." + m.Name
}

// OperationID returns a compact identifier used in logs and metric attributes.
func (m OperationMeta) OperationID() string {
	if m.Entity != "" {
		return m.Entity + "." + m.Name
	}
	return m.Name
}

// Tracer wraps OpenTelemetry tracing with operation-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an operation.
	StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("op.kind", meta.Kind),
		attribute.String("op.name", meta.Name),
		attribute.Bool("op.error", false),
	}
	if meta.Entity != "" {
		attrs = append(attrs, attribute.String("op.entity", meta.Entity))
	}
	if meta.Target != "" {
		attrs = append(attrs, attribute.String("op.target", meta.Target))
	}

	kind := trace.SpanKindInternal
	if meta.Kind == KindRequest {
		kind = trace.SpanKindClient
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a tracer that records nothing.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
