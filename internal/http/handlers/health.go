package handlers

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc/pool"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler serves /health, /healthz and /readyz.
type HealthHandler struct {
	checks   map[string]Check
	critical string
	started  time.Time
	version  string
}

// NewHealthHandler builds the probes. critical names the check /health
// depends on; /readyz runs all of them.
func NewHealthHandler(version, critical string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, critical: critical, started: time.Now(), version: version}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness only says the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// run probes every dependency concurrently.
func (h *HealthHandler) run(ctx context.Context) (map[string]string, bool) {
	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks)+1)
		healthy = true
	)
	p := pool.New().WithMaxGoroutines(max(1, len(h.checks)))
	for name, check := range h.checks {
		p.Go(func() {
			err := check(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[name] = "unhealthy: " + err.Error()
				healthy = false
				return
			}
			results[name] = "healthy"
		})
	}
	p.Wait()
	return results, healthy
}

// Readiness gates traffic on every dependency.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.run(ctx)
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = strconv.FormatFloat(float64(m.Alloc)/(1<<20), 'f', 2, 64)

	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	status := http.StatusOK
	if !healthy {
		resp.Status, status = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Health fails only when the critical dependency is down.
func (h *HealthHandler) Health(c *gin.Context) {
	if check, ok := h.checks[h.critical]; ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": h.critical + " unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}
