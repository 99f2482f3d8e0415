package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	userIDKey
)

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, with trace_id and span_id
// added while a span is active. Without a logger it returns a no-op one.
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}
	return withSpan(ctx, l)
}

func withSpan(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// WithRequestID records the request id and tags the context logger with it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withField(ctx, requestIDKey, "request_id", requestID)
}

// WithUserID records the signed-in shopper and tags the context logger with it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withField(ctx, userIDKey, "user_id", userID)
}

func withField(ctx context.Context, key ctxKey, field, value string) context.Context {
	ctx = context.WithValue(ctx, key, value)
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		ctx = WithContext(ctx, l.With(zap.String(field, value)))
	}
	return ctx
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
