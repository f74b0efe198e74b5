package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgSubscribed = "subscribed"
	MsgPong       = "pong"
	MsgError      = "error"
)
