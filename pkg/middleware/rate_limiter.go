package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter throttles a route group per client IP. Used on the recording
// upload endpoint, where a stuck client retry loop could otherwise flood
// blob storage. Rate uses the ulule format, e.g. "30-M".
func RateLimiter(rate string) gin.HandlerFunc {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		// A malformed configured rate should not take the route down.
		return func(c *gin.Context) { c.Next() }
	}
	instance := limiter.New(memory.NewStore(), parsed)

	return func(c *gin.Context) {
		ctx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if ctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
