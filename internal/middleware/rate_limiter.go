package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/project-management-api/internal/errors"
)

// RateLimiter allows at most limit requests per client IP in each fixed
// window. A non-positive limit disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	type bucket struct {
		count int
		start time.Time
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		swept   = time.Now()
	)

	return func(c *gin.Context) {
		now := time.Now()
		key := c.ClientIP()

		mu.Lock()
		// Drop idle buckets once per window so the map stays bounded
		if now.Sub(swept) > window {
			for k, b := range buckets {
				if now.Sub(b.start) > window {
					delete(buckets, k)
				}
			}
			swept = now
		}

		b, ok := buckets[key]
		if !ok || now.Sub(b.start) > window {
			b = &bucket{start: now}
			buckets[key] = b
		}

		if b.count >= limit {
			mu.Unlock()
			apierrors.TooManyRequests(c, "Rate limit exceeded")
			return
		}

		b.count++
		mu.Unlock()

		c.Next()
	}
}
