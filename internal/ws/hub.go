package ws

import (
	"encoding/json"
	"sync"
	"time"

	"rps_link/internal/logger"
	"rps_link/internal/service"
)

// Room holds the connections watching one game.
type Room struct {
	GameID    string
	clients   map[*Client]struct{}
	createdAt time.Time
}

// Hub fans game events out to the clients subscribed to that game.
// It implements service.Notifier.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*Room)}
}

// Join subscribes c to c.GameID.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.GameID]
	if !ok {
		room = &Room{
			GameID:    c.GameID,
			clients:   make(map[*Client]struct{}),
			createdAt: time.Now(),
		}
		h.rooms[c.GameID] = room
	}
	room.clients[c] = struct{}{}
	logger.Debug("ws client joined", "game_id", c.GameID, "user_id", c.UserID, "watchers", len(room.clients))
}

// Leave unsubscribes c and closes its send channel. Safe to call twice.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	room, ok := h.rooms[c.GameID]
	if !ok {
		return
	}
	if _, ok := room.clients[c]; !ok {
		return
	}
	delete(room.clients, c)
	close(c.Send)
	if len(room.clients) == 0 {
		delete(h.rooms, c.GameID)
	}
}

// Publish delivers ev to every watcher of ev.GameID. Clients whose send
// buffer is full are dropped rather than blocking the writer.
func (h *Hub) Publish(ev service.GameEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[ev.GameID]
	if !ok {
		return
	}
	for c := range room.clients {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws client too slow, dropping", "game_id", ev.GameID, "user_id", c.UserID)
			h.removeLocked(c)
		}
	}
}

// Watchers returns how many clients follow gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[gameID]; ok {
		return len(room.clients)
	}
	return 0
}

var _ service.Notifier = (*Hub)(nil)
