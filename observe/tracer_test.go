package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return NewTracer(tp.Tracer("test")), rec
}

func TestTracer_SuccessSpan(t *testing.T) {
	tracer, rec := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), SpanHandle, attribute.String("cache.key", "abc"))
	tracer.EndSpan(span, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanHandle {
		t.Errorf("name = %q, want %q", s.Name(), SpanHandle)
	}
	if s.Status().Code != codes.Unset {
		t.Errorf("status = %v, want Unset", s.Status().Code)
	}
	if s.SpanKind() != trace.SpanKindInternal {
		t.Errorf("kind = %v, want internal", s.SpanKind())
	}

	found := false
	for _, kv := range s.Attributes() {
		if kv.Key == "cache.key" && kv.Value.AsString() == "abc" {
			found = true
		}
	}
	if !found {
		t.Error("expected cache.key attribute")
	}
}

func TestTracer_ErrorSpan(t *testing.T) {
	tracer, rec := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), SpanRender)
	tracer.EndSpan(span, errors.New("render failed"))

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "render failed" {
		t.Errorf("description = %q", s.Status().Description)
	}

	if s.SpanKind() != trace.SpanKindClient {
		t.Errorf("kind = %v, want client", s.SpanKind())
	}
	if len(s.Events()) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestTracer_ChildSpanSharesTrace(t *testing.T) {
	tracer, rec := newRecordingTracer()

	ctx, parent := tracer.StartSpan(context.Background(), SpanHandle)
	_, child := tracer.StartSpan(ctx, SpanRender)
	tracer.EndSpan(child, nil)
	tracer.EndSpan(parent, nil)

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].SpanContext().TraceID() != spans[1].SpanContext().TraceID() {
		t.Error("child span should share the parent trace ID")
	}
}
