package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
)

// BodyLimit refuses declared lengths above maxBytes up front and caps
// the reader for chunked uploads, where the length is unknown.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abort(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
