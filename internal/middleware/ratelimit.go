package middleware

import (
	"net/http"

	"devplan/internal/pkg/ratelimit"
	"devplan/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateLimit rejects requests with 429 once keyFn's key has used up its
// window. An empty key is never limited.
func RateLimit(limiter ratelimit.Limiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := keyFn(c)
		if key != "" && !limiter.Allow(c.Request.Context(), key) {
			response.AbortError(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests, try again later")
			return
		}
		c.Next()
	}
}

func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}
