package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Integration-style tests: run only if REDIS_ADDR env is set.
func initTestRedis(t *testing.T) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), db)
	if redisClient == nil {
		t.Fatalf("redis at %s not reachable", addr)
	}
	t.Cleanup(func() {
		_ = redisClient.Close()
		redisClient = nil
	})
}

func serve(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRedisRateLimitIntegration(t *testing.T) {
	initTestRedis(t)
	gin.SetMode(gin.TestMode)

	// unique window so reruns do not share a counter
	window := time.Duration(30+time.Now().UnixNano()%1000) * time.Second
	r := gin.New()
	r.GET("/test", RedisRateLimit(2, window), func(c *gin.Context) { c.Status(http.StatusOK) })

	ip := "203.0.113.7"
	t.Cleanup(func() {
		_ = RedisClient().Del(context.Background(), "rl:"+strconv.FormatInt(int64(window.Seconds()), 10)+":"+ip).Err()
	})
	got := []int{serve(r, ip), serve(r, ip), serve(r, ip)}
	if got[0] != http.StatusOK || got[1] != http.StatusOK || got[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", got)
	}
}

func TestUserRateLimitIntegration(t *testing.T) {
	initTestRedis(t)
	gin.SetMode(gin.TestMode)

	user := uuid.NewString()
	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		c.Set(CtxUserID, user)
		c.Next()
	}, UserRateLimit("stake_submit", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Cleanup(func() {
		_ = RedisClient().Del(context.Background(), "user_rl:stake_submit:"+user+":60").Err()
	})
	// per user, so a second address does not reset the budget
	if code := serve(r, "198.51.100.1"); code != http.StatusOK {
		t.Fatalf("first = %d", code)
	}
	if code := serve(r, "198.51.100.2"); code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", code)
	}
}
