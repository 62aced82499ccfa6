package middleware

import (
	"net/http"
	"strconv"

	"island-timeline/internal/redis"
	timeline_errors "island-timeline/pkg/errors"

	"github.com/gin-gonic/gin"
)

// TimelineRateLimitMiddleware limits timeline reads per client IP.
// A limiter failure lets the request through; reads are cheap to serve.
func TimelineRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result, err := limiter.AllowQuery(c.Request.Context(), c.ClientIP())
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.Status(http.StatusTooManyRequests)
			_ = c.Error(timeline_errors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
