package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the per-client request budget.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// limiterPerIP tracks one token bucket per client IP. The map is reset
// wholesale once it grows past maxTrackedClients; settlement traffic comes
// from a small set of callers, so eviction precision is not worth the
// bookkeeping.
type limiterPerIP struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	config  RateLimiterConfig
}

const maxTrackedClients = 1000

func newLimiterPerIP(config RateLimiterConfig) *limiterPerIP {
	lp := &limiterPerIP{
		buckets: make(map[string]*rate.Limiter),
		config:  config,
	}
	go lp.sweep()
	return lp
}

func (lp *limiterPerIP) bucket(ip string) *rate.Limiter {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	b, ok := lp.buckets[ip]
	if !ok {
		b = rate.NewLimiter(rate.Limit(lp.config.RequestsPerSecond), lp.config.Burst)
		lp.buckets[ip] = b
	}
	return b
}

func (lp *limiterPerIP) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		lp.mu.Lock()
		if len(lp.buckets) > maxTrackedClients {
			lp.buckets = make(map[string]*rate.Limiter)
		}
		lp.mu.Unlock()
	}
}

// RateLimiterMiddleware rejects clients that exceed their request budget with
// 429 and a retry hint.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	limiters := newLimiterPerIP(config)

	return func(c *gin.Context) {
		bucket := limiters.bucket(c.ClientIP())
		if !bucket.Allow() {
			reservation := bucket.Reserve()
			retryAfter := reservation.DelayFrom(time.Now()).Seconds()
			reservation.Cancel()

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
