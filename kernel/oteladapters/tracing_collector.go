package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

// TracingCollector implements kernel.TracingCollector with an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a TracingCollector on tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, kernel.SpanContext) {

	// Start the span with the kernel attributes converted to OpenTelemetry ones
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributes(attrs)...))

	// Wrap the span so the kernel never sees OpenTelemetry types
	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds attrs, sets the status, and ends the span.
// Spans not started by a TracingCollector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx kernel.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	// Add final attributes before finishing
	otelSpanCtx.span.SetAttributes(attributes(attrs)...)

	// Set span status based on the status string
	otelSpanCtx.SetStatus(status)

	// Finish the span
	otelSpanCtx.span.End()
}

// Ensure TracingCollector implements kernel.TracingCollector
var _ kernel.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements kernel.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps "success" and "error" to OpenTelemetry status codes.
// Other values are recorded as the status attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case "success", "ok":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "operation failed")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

// AddAttribute adds an attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// Ensure OTelSpanContext implements kernel.SpanContext
var _ kernel.SpanContext = (*OTelSpanContext)(nil)
