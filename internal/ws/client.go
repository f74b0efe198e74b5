package ws

import (
	"encoding/json"
	"time"

	"rps_link/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

type Client struct {
	UserID string
	GameID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
	Done   chan struct{}
}

func NewClient(userID, gameID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		GameID: gameID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
		Done:   make(chan struct{}),
	}
}

// Run queues hello as the first frame, joins the hub and serves the
// connection until the peer goes away.
func (c *Client) Run(hello []byte) {
	c.Send <- hello
	c.Hub.Join(c)

	go c.writePump()
	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Leave(c)
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

// handle answers the few client messages there are. Moves go through the
// HTTP API, never the socket.
func (c *Client) handle(msg []byte) {
	var in InboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		c.reply(ErrorPayload{Type: MsgError, Message: "invalid message"})
		return
	}
	switch in.Type {
	case MsgPing:
		c.reply(InboundMessage{Type: MsgPong})
	default:
		c.reply(ErrorPayload{Type: MsgError, Message: "unknown message type"})
	}
}

func (c *Client) reply(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	// the hub may have dropped us; Leave closes Send under the hub lock
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if room, ok := c.Hub.rooms[c.GameID]; ok {
		if _, ok := room.clients[c]; ok {
			select {
			case c.Send <- b:
			default:
			}
		}
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
