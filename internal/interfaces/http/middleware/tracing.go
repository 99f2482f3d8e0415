package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens one server span per request, named "METHOD route".
// Health probes are not traced. When disabled it only calls the next
// handler.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
	)
}

// SpanAttributes tags the request span with the request id and, once
// OptionalAuth has run, the shopper's user id.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			attrs := make([]attribute.KeyValue, 0, 2)
			if id := GetRequestID(c); id != "" {
				attrs = append(attrs, attribute.String("request_id", id))
			}
			if id := UserIDFrom(c); id != "" {
				attrs = append(attrs, attribute.String("user_id", id))
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}

// SpanStatus marks spans of 4xx and 5xx responses as errors, described by
// the status text. It must run inside Tracing.
func SpanStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
