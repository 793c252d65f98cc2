package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"sherk_portal/internal/identity"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/session"

	"github.com/gin-gonic/gin"
)

const minPasswordLength = 6

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Telegram string `json:"telegram"`
}

func (r *AuthRequest) credentials() identity.Credentials {
	return identity.Credentials{
		Email:    strings.TrimSpace(strings.ToLower(r.Email)),
		Password: r.Password,
		Telegram: strings.TrimSpace(r.Telegram),
	}
}

func authStatus(err error) (int, gin.H) {
	ae := identity.AsAuthError(err)
	body := gin.H{"error": ae.Message, "kind": ae.Kind}
	switch ae.Kind {
	case identity.InvalidCredentials:
		return http.StatusUnauthorized, body
	case identity.NetworkUnavailable:
		body["action"] = "retry"
		return http.StatusServiceUnavailable, body
	default:
		// the auth service's own rejections (duplicate email, weak password)
		return http.StatusBadRequest, body
	}
}

func (h *Handler) sessionResponse(c *gin.Context, status int, entry *session.Entry, extra gin.H) {
	user := entry.Identity.CurrentUser()
	token, err := h.JWT.Issue(entry.ID, user.ID)
	if err != nil {
		h.Sessions.Close(c.Request.Context(), entry.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	body := gin.H{
		"token":   token,
		"user":    user,
		"profile": entry.Identity.Profile(),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	creds := req.credentials()

	entry := h.Sessions.Open()
	user, err := entry.Identity.SignIn(c.Request.Context(), creds)
	if err != nil {
		h.Sessions.Close(c.Request.Context(), entry.ID)
		status, body := authStatus(err)
		c.JSON(status, body)
		return
	}

	h.Audit.LogLogin(c.Request.Context(), user.ID, requestInfo(c))
	h.sessionResponse(c, http.StatusOK, entry, nil)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	creds := req.credentials()
	if _, err := mail.ParseAddress(creds.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if len(creds.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	ctx := c.Request.Context()
	entry := h.Sessions.Open()
	user, err := entry.Identity.SignUp(ctx, creds)

	var pending *identity.ProfilePendingError
	profilePending := errors.As(err, &pending)
	if err != nil && !profilePending {
		h.Sessions.Close(ctx, entry.ID)
		status, body := authStatus(err)
		c.JSON(status, body)
		return
	}
	h.Audit.LogSignUp(ctx, user.ID, requestInfo(c), profilePending)

	if entry.Identity.CurrentUser() == nil {
		// email confirmation required before a session exists
		h.Sessions.Close(ctx, entry.ID)
		c.JSON(http.StatusAccepted, gin.H{
			"user":                  user,
			"confirmation_required": true,
			"profile_pending":       profilePending,
		})
		return
	}
	if profilePending {
		logger.WithContext(ctx).Warn("signed up with profile pending", "user_id", user.ID, "error", pending.Err)
	}
	h.sessionResponse(c, http.StatusCreated, entry, gin.H{"profile_pending": profilePending})
}

func (h *Handler) SignOut(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := entry.Identity.CurrentUser()

	err := entry.Identity.SignOut(ctx)
	h.Sessions.Close(ctx, entry.ID)
	if user != nil {
		h.Audit.LogLogout(ctx, user.ID, requestInfo(c))
	}

	body := gin.H{"ok": true}
	if err != nil {
		// signed out locally; only the remote revocation failed
		body["warning"] = "remote sign-out failed: " + identity.AsAuthError(err).Message
	}
	c.JSON(http.StatusOK, body)
}

// EnsureProfile retries provisioning of the profile row after sign-up.
func (h *Handler) EnsureProfile(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	profile, err := entry.Identity.EnsureProfile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "profile could not be created", "action": "retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
