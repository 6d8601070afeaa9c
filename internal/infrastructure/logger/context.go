package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	sessionIDKey  contextKey = "session_id"
	customerIDKey contextKey = "customer_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger of ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return enrich(ctx, logger, requestIDKey, requestID)
}

// WithSessionID stores the shop session id and returns the enriched logger
func WithSessionID(ctx context.Context, logger *zap.Logger, sessionID string) (context.Context, *zap.Logger) {
	return enrich(ctx, logger, sessionIDKey, sessionID)
}

// WithCustomerID stores the customer (user) id and returns the enriched logger
func WithCustomerID(ctx context.Context, logger *zap.Logger, customerID string) (context.Context, *zap.Logger) {
	return enrich(ctx, logger, customerIDKey, customerID)
}

func enrich(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	if value == "" {
		return ctx, logger
	}
	ctx = context.WithValue(ctx, key, value)
	enriched := logger.With(zap.String(string(key), value))
	return WithContext(ctx, enriched), enriched
}

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetRequestID returns the request id of ctx
func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// GetSessionID returns the session id of ctx
func GetSessionID(ctx context.Context) string { return stringValue(ctx, sessionIDKey) }

// GetCustomerID returns the customer id of ctx
func GetCustomerID(ctx context.Context) string { return stringValue(ctx, customerIDKey) }

// GetTraceID returns the trace id of the active span, or ""
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// WithTraceContext adds trace_id and span_id of the active span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// L returns the context logger with trace correlation.
//
//	logger.L(ctx).Info("cart merged", zap.String("cart_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
