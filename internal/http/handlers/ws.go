package handlers

import (
	"net/http"

	"sherk_portal/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades to the session event stream; the session token comes from
// the token query parameter.
func (h *Handler) WS(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("ws upgrade error", "error", err)
		return
	}
	h.Hub.Serve(entry, conn)
}
