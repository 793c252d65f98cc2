package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady      = "ready"
	MsgPong       = "pong"
	MsgSession    = "session"
	MsgStakeState = "stake_state"
	MsgError      = "error"
)
