package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"rps_link/internal/domain"
	"rps_link/internal/logger"
	"rps_link/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// GameLookup is the part of the game service the socket needs.
type GameLookup interface {
	GetGame(ctx context.Context, id string) (*domain.Game, error)
}

// HandleWS upgrades GET /ws?token=...&game=... into a subscription to one
// game's events. allowedOrigin "" or "*" accepts any origin.
func HandleWS(hub *Hub, games GameLookup, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		gameID := c.Query("game")
		g, err := games.GetGame(c.Request.Context(), gameID)
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "try again later"})
			return
		}

		hello, _ := json.Marshal(SubscribedPayload{Type: MsgSubscribed, GameID: g.ID, Plays: len(g.Plays)})

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(userID, g.ID, conn, hub)
		go client.Run(hello)
	}
}
