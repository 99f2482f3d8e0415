package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
	// MaxRequestIDLength caps ids taken from the client.
	MaxRequestIDLength = 128
)

// RequestID reuses a well-formed X-Request-ID from the caller or mints a
// new one, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := clientRequestID(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = newRequestID()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// clientRequestID truncates id and rejects it when it holds anything
// outside printable ASCII, which would otherwise end up in log lines.
func clientRequestID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > MaxRequestIDLength {
		id = id[:MaxRequestIDLength]
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ""
		}
	}
	return id
}

func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// abort ends the request with the standard error envelope. The status
// follows from code.
func abort(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
