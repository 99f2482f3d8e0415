package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter hands each client a token bucket of size limit that refills
// at limit tokens per window. Buckets idle for two windows are dropped.
type RateLimiter struct {
	limit  int
	window time.Duration
	every  rate.Limit

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts a sweeper goroutine; call Stop when done.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	limit = max(limit, 1)
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(2 * rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > 2*rl.window {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow takes a token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.Allow()
}

// Remaining is the number of whole tokens left in key's bucket.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		return rl.limit
	}
	return max(int(math.Floor(b.Tokens())), 0)
}

// retryAfter is the refill time of one token, in whole seconds.
func (rl *RateLimiter) retryAfter() int {
	return int(math.Ceil((rl.window / time.Duration(rl.limit)).Seconds()))
}

// RateLimit buckets signed-in shoppers by user id and everyone else by
// client IP, so shoppers behind one NAT do not starve each other.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		if userID := UserIDFrom(c); userID != "" {
			return "user:" + userID
		}
		return "ip:" + c.ClientIP()
	})
}

func RateLimitByKey(limiter *RateLimiter, keyOf func(*gin.Context) string) gin.HandlerFunc {
	limitHeader := strconv.Itoa(limiter.limit)

	return func(c *gin.Context) {
		key := keyOf(c)
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(limiter.retryAfter()))
			abort(c, dto.ErrCodeRateLimited, "Too many requests. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Limit", limitHeader)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
