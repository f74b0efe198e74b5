package ws

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client
type SubscribedPayload struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Plays  int    `json:"plays"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
