package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the application service spans.
const TracerName = "shopflux-storefront"

// Span attribute keys set by the application services.
const (
	SpanAttrProductID = "product.id"
	SpanAttrUserID    = "user.id"
	SpanAttrOrderID   = "order.id"
	SpanAttrQuantity  = "quantity"
	SpanAttrResults   = "results"
)

// StartServiceSpan starts an internal span named "<service>.<operation>" on
// the global provider. Options may override the kind.
func StartServiceSpan(ctx context.Context, service, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append([]trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}, opts...)
	return otel.Tracer(TracerName).Start(ctx, service+"."+operation, opts...)
}

// WithAttribute sets one attribute on the started span.
func WithAttribute(key string, value any) trace.SpanStartOption {
	return trace.WithAttributes(kv(key, value))
}

// SetAttributes sets alternating key/value pairs; pairs with a non-string key
// and a trailing odd element are ignored.
func SetAttributes(span trace.Span, pairs ...any) {
	if span != nil {
		span.SetAttributes(kvs(pairs)...)
	}
}

// AddEvent adds a named event carrying alternating key/value pairs.
func AddEvent(span trace.Span, name string, pairs ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(kvs(pairs)...))
	}
}

// RecordError records err as an exception event and fails the span.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func kvs(pairs []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(pairs)/2)
	for i := 1; i < len(pairs); i += 2 {
		if key, ok := pairs[i-1].(string); ok {
			out = append(out, kv(key, pairs[i]))
		}
	}
	return out
}

func kv(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	}
	return attribute.String(key, fmt.Sprint(value))
}
