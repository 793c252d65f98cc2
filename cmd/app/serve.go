package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sherk_portal/internal/config"
	httpServer "sherk_portal/internal/http"
	"sherk_portal/internal/http/middleware"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/service"
	"sherk_portal/internal/session"
	"sherk_portal/internal/stake"
	"sherk_portal/internal/supabase"
	"sherk_portal/internal/ws"

	"github.com/gin-gonic/gin"
)

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.RedisAddr != "" {
		middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	var audit *service.AuditService
	if b.pool != nil {
		audit = service.NewAuditService(b.pool)
	} else {
		audit = service.NewAuditService(nil)
	}

	sessions := session.NewRegistry(session.Deps{
		Auth:   supabase.NewAuthClient(b.client),
		Stores: b.sessionStores(),
		StakeOptions: stake.Options{
			Timeout:            cfg.StakeSubmitTimeout,
			LockIdentityFields: cfg.LockIdentityFields,
		},
	}, cfg.SessionTTL)
	sessions.StartCleanup(ctx, time.Minute)

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:   cfg,
		Sessions: sessions,
		JWT:      service.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL),
		Audit:    audit,
		Hub:      ws.NewHub(),
		Checks:   b.checks(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// signs every session out and lets in-flight submissions settle
	sessions.CloseAll(shutdownCtx)

	logger.Info("server exited")
	return nil
}
