package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

// Client is one websocket connection of a session.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Done      chan struct{}

	hub       *Hub
	log       *slog.Logger
	closeOnce sync.Once
}

func newClient(sessionID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Done:      make(chan struct{}),
		hub:       hub,
		log:       hub.log.With("session_id", sessionID),
	}
}

// Run pumps until the peer disconnects or the session closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// enqueue never blocks; a client that cannot keep up is dropped.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.Done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		c.log.Warn("ws send buffer full, closing client")
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.Done)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", "error", err)
			}
			return
		}
		var in Event
		if err := json.Unmarshal(msg, &in); err != nil {
			c.enqueue(encode(Event{Type: MsgError, Data: ErrorPayload{Message: "invalid message"}}))
			continue
		}
		switch in.Type {
		case MsgPing:
			c.enqueue(encode(Event{Type: MsgPong}))
		default:
			c.enqueue(encode(Event{Type: MsgError, Data: ErrorPayload{Message: "unknown message type"}}))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("ws write error", "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.Done:
			// flush what was queued before the close
			for drained := false; !drained; {
				select {
				case msg := <-c.Send:
					_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					drained = true
				}
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
			return
		}
	}
}
