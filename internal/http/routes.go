package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"sherk_portal/internal/config"
	"sherk_portal/internal/http/handlers"
	"sherk_portal/internal/http/middleware"
	"sherk_portal/internal/service"
	"sherk_portal/internal/session"
	"sherk_portal/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from main.
type Deps struct {
	Config   *config.Config
	Sessions *session.Registry
	JWT      *service.JWTManager
	Audit    *service.AuditService
	Hub      *ws.Hub
	// Checks feed /readyz; "store" also gates /health.
	Checks map[string]handlers.Check
}

func RegisterRoutes(r *gin.Engine, d Deps) *handlers.Handler {
	cfg := d.Config
	h := handlers.NewHandler(d.Sessions, d.JWT, d.Audit, d.Hub, cfg.AllowedOrigin)
	healthHandler := handlers.NewHealthHandler(cfg.AppVersion, "store", d.Checks)

	r.Use(middleware.RequestID(), middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, d, cfg)

	registerFrontend(r, cfg.FrontendDir)
	return h
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, d Deps, cfg *config.Config) {
	authed := middleware.Session(d.Sessions, d.JWT)
	authRL := middleware.AuthRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authRL, h.SignUp)
		auth.POST("/signin", authRL, h.SignIn)
		auth.POST("/signout", authed, h.SignOut)
		auth.POST("/profile", authed, h.EnsureProfile)
	}

	api.GET("/me", authed, h.Me)

	// Staking
	api.GET("/stake", authed, h.Dashboard)
	api.POST("/stake", authed, middleware.UserRateLimit("stake_submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow), h.SubmitStake)
	api.GET("/stake/preview", h.PreviewRewards)

	// Admin
	admin := api.Group("/admin")
	admin.Use(authed, middleware.AdminOnly())
	{
		admin.GET("/stakes", h.AdminStakes)
		admin.GET("/stakes/export", h.AdminExport)
		admin.DELETE("/stakes/:ownerID", h.AdminDeleteStake)
		admin.GET("/audit", h.AdminAudit)
	}

	// Marketing content
	content := api.Group("/content")
	{
		content.GET("/landing", h.Landing)
		content.GET("/giveaways", h.Giveaways)
		content.GET("/token", h.Token)
		content.GET("/faq", h.FAQ)
		content.GET("/testimonials", h.Testimonials)
	}

	// Session event stream
	api.GET("/ws", authed, h.WS)
}

// registerFrontend serves the built SPA; unknown non-API paths get index.html.
func registerFrontend(r *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	r.StaticFS("/assets", gin.Dir(filepath.Join(dir, "assets"), false))
	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	})
}
