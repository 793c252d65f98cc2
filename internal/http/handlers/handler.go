package handlers

import (
	"net/http"

	"sherk_portal/internal/http/middleware"
	"sherk_portal/internal/service"
	"sherk_portal/internal/session"
	"sherk_portal/internal/stake"
	"sherk_portal/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Sessions      *session.Registry
	JWT           *service.JWTManager
	Audit         *service.AuditService
	Admin         *service.AdminService
	Hub           *ws.Hub
	AllowedOrigin string
}

func NewHandler(sessions *session.Registry, jwt *service.JWTManager, audit *service.AuditService, hub *ws.Hub, allowedOrigin string) *Handler {
	return &Handler{
		Sessions:      sessions,
		JWT:           jwt,
		Audit:         audit,
		Admin:         service.NewAdminService(audit),
		Hub:           hub,
		AllowedOrigin: allowedOrigin,
	}
}

func requestInfo(c *gin.Context) service.RequestInfo {
	return service.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// currentSession returns the session set by middleware.Session.
func currentSession(c *gin.Context) (*session.Entry, bool) {
	entry := middleware.SessionFrom(c)
	if entry == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "action": "sign_in"})
		return nil, false
	}
	return entry, true
}

// stakeStatus maps a controller error kind to its HTTP status.
func stakeStatus(k stake.Kind) int {
	switch k {
	case stake.KindUnauthenticated:
		return http.StatusUnauthorized
	case stake.KindEmptyStake, stake.KindInvalidStake, stake.KindFieldLocked:
		return http.StatusUnprocessableEntity
	case stake.KindBusy:
		return http.StatusConflict
	case stake.KindCanceled:
		// client went away; the attempt itself carries on
		return http.StatusRequestTimeout
	case stake.KindTimeout:
		return http.StatusGatewayTimeout
	case stake.KindNetworkUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func respondStakeError(c *gin.Context, err error) {
	if e, ok := stake.AsError(err); ok {
		c.JSON(stakeStatus(e.Kind), gin.H{
			"error":     e.Message,
			"kind":      e.Kind,
			"action":    e.Action,
			"retryable": e.Retryable(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
