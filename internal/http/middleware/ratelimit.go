package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

type localLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	max     int
	window  time.Duration
	now     func() time.Time
	sweptAt time.Time
}

func (l *localLimiter) hit(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.sweptAt) > l.window {
		for k, ci := range l.clients {
			if now.Sub(ci.last) > l.window {
				delete(l.clients, k)
			}
		}
		l.sweptAt = now
	}

	ci, ok := l.clients[ip]
	if !ok || now.Sub(ci.last) > l.window {
		l.clients[ip] = &clientInfo{last: now, count: 1}
		return 1 <= l.max
	}
	ci.count++
	return ci.count <= l.max
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// State is per process.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	l := &localLimiter{clients: make(map[string]*clientInfo), max: maxRequests, window: window, now: time.Now}
	return func(c *gin.Context) {
		if !l.hit(c.ClientIP()) {
			RLBlocked.WithLabelValues("local:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues("local:" + c.FullPath()).Inc()
		c.Next()
	}
}
