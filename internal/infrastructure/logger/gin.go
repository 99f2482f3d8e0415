package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinMiddleware attaches a request logger to the request context and writes
// one access line per request once the handlers are done. 5xx responses log
// at error level and 4xx at warn.
//
// It reads the id set by the RequestID middleware, so it must run after it.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := WithContext(c.Request.Context(), base.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		))
		if id := c.GetString("request_id"); id != "" {
			ctx = WithRequestID(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// handlers may have replaced the context logger, e.g. after sign-in
		l := FromContext(c.Request.Context())
		if ce := l.Check(accessLevel(c.Writer.Status()), "HTTP Request"); ce != nil {
			ce.Write(accessFields(c, time.Since(start))...)
		}
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

func accessFields(c *gin.Context, latency time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", latency),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("body_size", c.Writer.Size()),
	}
	if q := c.Request.URL.RawQuery; q != "" {
		fields = append(fields, zap.String("query", q))
	}
	if route := c.FullPath(); route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

// Recovery turns a handler panic into a logged stack trace and a 500 in
// the API error envelope.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString("request_id")
			base.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_INTERNAL",
					"message":    "An internal error occurred",
					"request_id": requestID,
				},
			})
		}()
		c.Next()
	}
}

// FromGin returns the request logger of c.
func FromGin(c *gin.Context) *zap.Logger {
	if c.Request == nil {
		return zap.NewNop()
	}
	return FromContext(c.Request.Context())
}
