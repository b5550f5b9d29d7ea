package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Span names used by the proxy.
const (
	SpanHandle    = "mathproxy.handle"
	SpanUpstream  = "mathproxy.upstream.solve"
	SpanRender    = "mathproxy.render"
	SpanHandshake = "mathproxy.upstream.handshake"
)

// Tracer starts and ends the proxy's spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type tracer struct {
	t trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracer{t: t}
}

// StartSpan marks outbound calls (handshake, upstream solve, render) as
// client spans; everything else is internal.
func (t *tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(spanKind(name)),
	)
}

func spanKind(name string) trace.SpanKind {
	switch name {
	case SpanUpstream, SpanHandshake, SpanRender:
		return trace.SpanKindClient
	}
	return trace.SpanKindInternal
}

func (t *tracer) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// NopTracer returns a tracer whose spans are never recorded.
func NopTracer() Tracer {
	return NewTracer(tracenoop.NewTracerProvider().Tracer("noop"))
}
