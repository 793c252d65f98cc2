// Package ws streams session and stake lifecycle events to the browser.
package ws

import (
	"log/slog"
	"sync"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/session"
	"sherk_portal/internal/stake"

	"github.com/gorilla/websocket"
)

// Hub fans session events out to every connection of that session.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{}
	attached map[string]bool
	log      *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		attached: make(map[string]bool),
		log:      logger.With("component", "ws"),
	}
}

// Serve registers conn for the session, sends the ready frame and blocks
// until the connection ends.
func (h *Hub) Serve(entry *session.Entry, conn *websocket.Conn) {
	c := newClient(entry.ID, conn, h)
	h.mu.Lock()
	set, ok := h.clients[entry.ID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[entry.ID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	// after registering, so a session closed meanwhile still closes c
	h.attach(entry)

	c.enqueue(encode(Event{Type: MsgReady, Data: ReadyPayload{
		SessionID: entry.ID,
		User:      entry.Identity.CurrentUser(),
		State:     entry.Stakes.State(),
	}}))
	c.Run()
}

// attach subscribes to the session's identity and stake controller once.
func (h *Hub) attach(entry *session.Entry) {
	h.mu.Lock()
	if h.attached[entry.ID] {
		h.mu.Unlock()
		return
	}
	h.attached[entry.ID] = true
	h.mu.Unlock()

	id := entry.ID
	unsubscribe := entry.Identity.OnSessionChange(func(u *domain.User) {
		h.Publish(id, Event{Type: MsgSession, Data: SessionPayload{User: u}})
	})
	entry.Stakes.OnTransition(func(t stake.Transition) {
		h.Publish(id, Event{Type: MsgStakeState, Data: stakeStatePayload(t)})
	})
	entry.OnClose(func() {
		unsubscribe()
		h.closeSession(id)
	})
}

// Publish queues e for every client of the session. It never blocks.
func (h *Hub) Publish(sessionID string, e Event) int {
	msg := encode(e)
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[sessionID]))
	for c := range h.clients[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if c.enqueue(msg) {
			sent++
		}
	}
	return sent
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.SessionID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.SessionID)
		}
	}
}

func (h *Hub) closeSession(sessionID string) {
	h.mu.Lock()
	set := h.clients[sessionID]
	delete(h.clients, sessionID)
	delete(h.attached, sessionID)
	h.mu.Unlock()

	for c := range set {
		c.close()
	}
	if len(set) > 0 {
		h.log.Info("ws clients closed with session", "session_id", sessionID, "clients", len(set))
	}
}

// Len is the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
