package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}

	profile := entry.Identity.Profile()
	if profile == nil {
		// best effort; a missing row is reported as null
		profile, _ = entry.Identity.LoadProfile(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       entry.Identity.CurrentUser(),
		"profile":    profile,
		"expires_at": entry.Identity.ExpiresAt(),
		"is_admin":   profile != nil && profile.IsAdmin(),
	})
}
