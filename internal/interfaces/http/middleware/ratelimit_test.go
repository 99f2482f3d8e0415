package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int, window time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)
	return rl
}

// drain takes n tokens from key and reports how many were granted.
func drain(rl *RateLimiter, key string, n int) int {
	granted := 0
	for range n {
		if rl.Allow(key) {
			granted++
		}
	}
	return granted
}

func TestRateLimiter_BurstIsTheLimit(t *testing.T) {
	rl := newLimiter(t, 4, time.Minute)

	assert.Equal(t, 4, drain(rl, "ip:198.51.100.7", 6))
	assert.Zero(t, rl.Remaining("ip:198.51.100.7"))
	assert.Equal(t, 4, rl.Remaining("ip:198.51.100.8"), "untouched keys have a full bucket")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newLimiter(t, 1, time.Minute)

	require.True(t, rl.Allow("user:a"))
	assert.False(t, rl.Allow("user:a"))
	assert.True(t, rl.Allow("user:b"))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := newLimiter(t, 2, 40*time.Millisecond)

	require.Equal(t, 2, drain(rl, "k", 3))
	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow("k"))
}

func TestRateLimiter_ConcurrentCallers(t *testing.T) {
	rl := newLimiter(t, 30, time.Hour)

	var granted atomic.Int32
	var wg sync.WaitGroup
	for range 90 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("hot") {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 30, granted.Load())
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := newLimiter(t, 0, 0)

	assert.Equal(t, 1, rl.limit)
	assert.Equal(t, time.Minute, rl.window)
	assert.Equal(t, 60, rl.retryAfter())
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func limitedEngine(rl *RateLimiter, before ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(append(before, RateLimit(rl))...)
	engine.GET("/catalog/featured", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func hit(engine *gin.Engine, remote string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/catalog/featured", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimit_Headers(t *testing.T) {
	engine := limitedEngine(newLimiter(t, 2, time.Minute))

	first := hit(engine, "203.0.113.5:40000", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, hit(engine, "203.0.113.5:40001", nil).Code)

	refused := hit(engine, "203.0.113.5:40002", nil)
	assert.Equal(t, http.StatusTooManyRequests, refused.Code)
	assert.Equal(t, "30", refused.Header().Get("Retry-After"))
	assert.Empty(t, refused.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, refused.Body.String(), "ERR_RATE_LIMITED")

	assert.Equal(t, http.StatusOK, hit(engine, "203.0.113.6:40000", nil).Code, "other address, other bucket")
}

func TestRateLimit_SignedInShoppersShareNoBucket(t *testing.T) {
	asUser := func(c *gin.Context) {
		if id := c.GetHeader("X-Shopper"); id != "" {
			c.Set(UserIDKey, id)
		}
	}
	engine := limitedEngine(newLimiter(t, 1, time.Minute), asUser)
	nat := "192.0.2.1:5000"
	shopper := func(id string) http.Header { return http.Header{"X-Shopper": {id}} }

	assert.Equal(t, http.StatusOK, hit(engine, nat, shopper("u-1")).Code)
	assert.Equal(t, http.StatusOK, hit(engine, nat, shopper("u-2")).Code)
	assert.Equal(t, http.StatusOK, hit(engine, nat, nil).Code, "anonymous uses the ip bucket")
	assert.Equal(t, http.StatusTooManyRequests, hit(engine, nat, shopper("u-1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(engine, nat, nil).Code)
}
