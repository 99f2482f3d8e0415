package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type meterHarness struct {
	t      *testing.T
	reader *sdkmetric.ManualReader
	router *gin.Engine
}

func newMeterHarness(t *testing.T, before ...gin.HandlerFunc) *meterHarness {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(before...)
	router.Use(HTTPMetrics(provider.Meter("http.server"), nil))
	return &meterHarness{t: t, reader: reader, router: router}
}

func (h *meterHarness) serve(req *http.Request) int {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w.Code
}

func (h *meterHarness) metric(name string) (metricdata.Metrics, bool) {
	h.t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(h.t, h.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// requestCounts sums http_server_request_total by the value of key
func (h *meterHarness) requestCounts(key string) map[string]int64 {
	h.t.Helper()
	m, ok := h.metric("http_server_request_total")
	require.True(h.t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(h.t, ok)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		counts[v.Emit()] += dp.Value
	}
	return counts
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil, nil))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_OneSeriesPerRoute(t *testing.T) {
	h := newMeterHarness(t)
	h.router.GET("/api/v1/catalog/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, http.StatusOK, h.serve(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/"+id, nil)))
	}

	assert.Equal(t, map[string]int64{"/api/v1/catalog/products/:id": 3}, h.requestCounts("http.route"))
	assert.Equal(t, map[string]int64{"catalog": 3}, h.requestCounts("storefront.area"))
	_, ok := h.metric("http_server_request_duration_seconds")
	assert.True(t, ok)
}

func TestHTTPMetrics_AuthenticatedAttribute(t *testing.T) {
	h := newMeterHarness(t, func(c *gin.Context) {
		if c.Query("signed_in") == "1" {
			c.Set(UserIDKey, "user-1")
		}
		c.Next()
	})
	h.router.GET("/api/v1/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, q := range []string{"", "?signed_in=1", "?signed_in=1"} {
		h.serve(httptest.NewRequest(http.MethodGet, "/api/v1/cart"+q, nil))
	}

	assert.Equal(t, map[string]int64{"false": 1, "true": 2}, h.requestCounts("authenticated"))
}

func TestHTTPMetrics_SizesAndInFlight(t *testing.T) {
	h := newMeterHarness(t)
	h.router.POST("/api/v1/newsletter/subscriptions", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"subscribed": true})
	})

	h.serve(httptest.NewRequest(http.MethodPost, "/api/v1/newsletter/subscriptions", strings.NewReader(`{"email":"a@b.co"}`)))

	for _, name := range []string{"http_server_request_size_bytes", "http_server_response_size_bytes"} {
		_, ok := h.metric(name)
		assert.True(t, ok, name)
	}

	m, ok := h.metric("http_server_active_requests")
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range sum.DataPoints {
		assert.Zero(t, dp.Value)
	}
}

func TestHTTPMetrics_UnmatchedRoute(t *testing.T) {
	h := newMeterHarness(t)

	assert.Equal(t, http.StatusNotFound, h.serve(httptest.NewRequest(http.MethodGet, "/nope", nil)))
	assert.Equal(t, map[string]int64{unmatchedRoute: 1}, h.requestCounts("http.route"))
}

func TestAPIArea(t *testing.T) {
	for route, want := range map[string]string{
		"/api/v1/catalog/products/:id":   "catalog",
		"/api/v1/cart/items/:product_id": "cart",
		"/api/v2/orders":                 "orders",
		"/health":                        "health",
		"/swagger/*any":                  "swagger",
		"/api/v1/:id":                    "",
		"":                               "",
	} {
		assert.Equal(t, want, apiArea(route), route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("catalog"))
}
