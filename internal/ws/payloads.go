package ws

import (
	"encoding/json"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/stake"
)

// Event is one frame on the stream: {"type": ..., "data": ...}.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type ReadyPayload struct {
	SessionID string       `json:"session_id"`
	User      *domain.User `json:"user"`
	State     stake.State  `json:"stake_state"`
}

// SessionPayload carries the current user, or null after sign-out.
type SessionPayload struct {
	User *domain.User `json:"user"`
}

type StakeStatePayload struct {
	From      stake.State  `json:"from"`
	To        stake.State  `json:"to"`
	Kind      stake.Kind   `json:"kind,omitempty"`
	Action    stake.Action `json:"action,omitempty"`
	Message   string       `json:"message,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func stakeStatePayload(t stake.Transition) StakeStatePayload {
	p := StakeStatePayload{From: t.From, To: t.To}
	if t.Err != nil {
		p.Kind = t.Err.Kind
		p.Action = t.Err.Action
		p.Message = t.Err.Message
		p.Retryable = t.Err.Retryable()
	}
	return p
}

func encode(e Event) []byte {
	b, err := json.Marshal(e)
	if err != nil {
		b, _ = json.Marshal(Event{Type: MsgError, Data: ErrorPayload{Message: "encode failed"}})
	}
	return b
}
