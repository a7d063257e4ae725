package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-client rate limiting middleware using token buckets.
// Clients are identified by the API key set by the auth middleware, or by
// their IP when the API runs without keys.
//
// Each client bucket fills at rps tokens/sec up to burst. Every request takes
// one token; an empty bucket answers 429 with a Retry-After hint.
// rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	retryAfter := strconv.Itoa(int(math.Ceil(1 / rps)))

	return func(c *gin.Context) {
		client := c.GetString(ClientKey)
		if client == "" {
			client = "ip:" + c.ClientIP()
		}

		mu.Lock()
		limiter, ok := limiters[client]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[client] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
