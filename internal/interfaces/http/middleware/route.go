package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unknown"

// routePattern is the registered route of the request, so /products/:id
// stays one series however many ids are requested.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

// apiArea names the storefront area a route belongs to: the first literal
// segment after the /api/vN prefix ("catalog", "cart", "orders", ...).
func apiArea(route string) string {
	for _, segment := range strings.Split(route, "/") {
		switch {
		case segment == "", segment == "api", isVersionSegment(segment):
			continue
		case segment[0] == ':' || segment[0] == '*':
			return ""
		}
		return segment
	}
	return ""
}

// isVersionSegment matches v1, v2, V10...
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	return strings.Trim(segment[1:], "0123456789") == ""
}
