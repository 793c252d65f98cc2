package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"sherk_portal/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// Provide addr (host:port), password and db index. If connection fails, redisClient remains nil
// and middleware will act as fail-open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// on ping failure, disable redis client to keep server available
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		redisClient = nil
	}
}

// RedisClient is the shared client, or nil when Redis is not configured.
func RedisClient() *redis.Client {
	return redisClient
}

// allow counts one hit on key and reports whether it is within max.
// ok is false when Redis is unavailable.
func allow(ctx context.Context, key string, max int, window time.Duration) (count int64, allowed, ok bool) {
	if redisClient == nil {
		return 0, true, false
	}
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, true, false
	}
	if val == 1 {
		// first increment, set expiry
		redisClient.Expire(ctx, key, window)
	}
	return val, val <= int64(max), true
}

// RedisRateLimit implements a simple fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// fallback to allowing requests if Redis not configured
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		_, allowed, ok := allow(c.Request.Context(), key, maxRequests, window)
		if !ok {
			// on Redis error, fail-open (allow) but set header
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if !allowed {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// AuthRateLimit guards the sign-in and sign-up endpoints per IP. Without
// Redis it falls back to an in-process window instead of failing open.
func AuthRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	redisLimit := RedisRateLimit(maxRequests, window)
	local := SimpleRateLimit(maxRequests, window)
	return func(c *gin.Context) {
		if redisClient == nil {
			local(c)
			return
		}
		redisLimit(c)
	}
}
