package middleware

import (
	"net/http"
	"strings"
	"time"

	"sherk_portal/internal/identity"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/service"
	"sherk_portal/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	CtxSession = "session"
	CtxUserID  = "user_id"

	// refreshSkew is how close to expiry the upstream token is rotated.
	refreshSkew = time.Minute
)

// SessionFrom returns the session set by Session.
func SessionFrom(c *gin.Context) *session.Entry {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	e, _ := v.(*session.Entry)
	return e
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	// browsers cannot set headers on websocket upgrades
	return c.Query("token")
}

// Session resolves the bearer JWT to a live, signed-in server session.
func Session(reg *session.Registry, jwt *service.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required", "action": "sign_in"})
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "action": "sign_in"})
			return
		}
		entry, ok := reg.Get(claims.SessionID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "action": "sign_in"})
			return
		}

		// a rejected refresh signs the session out; other failures keep the
		// current token until it actually expires
		if err := entry.Identity.EnsureFresh(c.Request.Context(), refreshSkew); err != nil {
			logger.WithContext(c.Request.Context()).Warn("token refresh failed",
				"session_id", entry.ID, "kind", identity.AsAuthError(err).Kind)
		}
		user := entry.Identity.CurrentUser()
		if user == nil || user.ID != claims.Subject {
			reg.Close(c.Request.Context(), entry.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "signed out", "action": "sign_in"})
			return
		}

		c.Set(CtxSession, entry)
		c.Set(CtxUserID, user.ID)
		c.Next()
	}
}

// AdminOnly requires the session's profile to carry the admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := SessionFrom(c)
		if entry == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		profile := entry.Identity.Profile()
		if profile == nil {
			p, err := entry.Identity.LoadProfile(c.Request.Context())
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "profile unavailable", "action": "retry"})
				return
			}
			profile = p
		}
		if profile == nil || !profile.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin privileges required"})
			return
		}
		c.Next()
	}
}
