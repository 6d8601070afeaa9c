package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of storefront spans
const TracerName = "storefront"

// Span attribute keys shared by the services
const (
	SpanAttrOrderID     = "order_id"
	SpanAttrOrderNumber = "order_number"
	SpanAttrProduct     = "product"
	SpanAttrCategory    = "category"
	SpanAttrCategoryID  = "category_id"
	SpanAttrShipping    = "shipping_method_id"
	SpanAttrJob         = "job"
)

// SpanOption configures a span when it is started
type SpanOption func(*[]trace.SpanStartOption)

// WithAttribute sets an attribute on the new span
func WithAttribute(key string, value any) SpanOption {
	return func(opts *[]trace.SpanStartOption) {
		*opts = append(*opts, trace.WithAttributes(toAttribute(key, value)))
	}
}

// WithSpanKind overrides the default internal span kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(opts *[]trace.SpanStartOption) {
		*opts = append(*opts, trace.WithSpanKind(kind))
	}
}

func start(ctx context.Context, name string, base []trace.SpanStartOption, opts []SpanOption) (context.Context, trace.Span) {
	startOpts := append([]trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}, base...)
	for _, opt := range opts {
		opt(&startOpts)
	}
	return otel.Tracer(TracerName).Start(ctx, name, startOpts...)
}

// StartServiceSpan starts the span of an application service call,
// named "{service}.{method}", e.g. "checkout.place_order". The caller ends
// the span.
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return start(ctx, service+"."+method, nil, opts)
}

// StartJobSpan starts a root span for a background job run, detached from
// any trace carried by ctx.
func StartJobSpan(ctx context.Context, job string, opts ...SpanOption) (context.Context, trace.Span) {
	base := []trace.SpanStartOption{
		trace.WithNewRoot(),
		trace.WithAttributes(attribute.String(SpanAttrJob, job)),
	}
	return start(ctx, "job."+job, base, opts)
}

// SetAttributes sets alternating key/value pairs on the span. Pairs with a
// non-string key are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	span.SetAttributes(attrs...)
}

// SetAttribute sets a single attribute on the span
func SetAttribute(span trace.Span, key string, value any) {
	if span != nil {
		span.SetAttributes(toAttribute(key, value))
	}
}

// RecordError records err on the span and marks the span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case decimal.Decimal:
		return attribute.String(key, v.String())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
