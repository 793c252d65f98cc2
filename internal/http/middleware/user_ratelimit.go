package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UserRateLimit limits a route per signed-in user (not per IP) using Redis.
// Requires Session to run before this.
func UserRateLimit(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		userID := c.GetString(CtxUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "user_rl:" + name + ":" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		val, allowed, ok := allow(c.Request.Context(), key, maxRequests, window)
		if !ok {
			c.Header("X-UserRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-UserRateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-UserRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if !allowed {
			RLBlocked.WithLabelValues("user:" + name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       name + " rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("user:" + name).Inc()
		c.Next()
	}
}
