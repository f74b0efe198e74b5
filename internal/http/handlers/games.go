package handlers

import (
	"net/http"
	"time"

	"rps_link/internal/domain"
	"rps_link/internal/game"
	"rps_link/internal/service"

	"github.com/gin-gonic/gin"
)

type CreateGameRequest struct {
	Move    string `json:"move" binding:"required"`
	Comment string `json:"comment"`
	Mode    string `json:"mode"`
}

func (h *Handler) CreateGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "move is required", "code": "invalid_move"})
		return
	}
	move, err := game.ParseMove(req.Move)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	ctx := c.Request.Context()
	g, err := h.Games.CreateGame(ctx, userID, move, req.Comment, domain.GameMode(req.Mode))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	view, err := h.Games.GameView(ctx, g.ID, userID)
	if err != nil {
		// created but not readable back; still report the id
		c.JSON(http.StatusCreated, service.View(g, userID, nil))
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) GetGame(c *gin.Context) {
	userID, _ := getUserID(c)

	view, err := h.Games.GameView(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

type PlayRequest struct {
	Move string `json:"move" binding:"required"`
}

type playResponse struct {
	Outcome   domain.Outcome `json:"outcome"`
	Result    game.Result    `json:"result"`
	GuestMove domain.Move    `json:"guest_move"`
	HostMove  domain.Move    `json:"host_move"`
	PlayedAt  time.Time      `json:"played_at"`
	DateLabel string         `json:"date_label"`
}

func newPlayResponse(res *service.SubmitResult) playResponse {
	p := res.Play
	return playResponse{
		Outcome:   res.Outcome,
		Result:    game.ResultFor(res.Outcome, game.RoleGuest),
		GuestMove: p.GuestMove,
		HostMove:  p.HostMove,
		PlayedAt:  res.PlayedAt.UTC(),
		DateLabel: game.FormatGameDate(res.PlayedAt),
	}
}

func (h *Handler) SubmitMove(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "move is required", "code": "invalid_move"})
		return
	}
	move, err := game.ParseMove(req.Move)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	res, err := h.Games.SubmitMove(c.Request.Context(), c.Param("id"), userID, move)
	if err != nil {
		var extra gin.H
		// the guest's own earlier play; a resolved single game only says
		// that it is taken
		if res != nil && res.Play.GuestID == userID {
			extra = gin.H{"play": newPlayResponse(res)}
		}
		respondError(c, err, extra)
		return
	}
	c.JSON(http.StatusCreated, newPlayResponse(res))
}

func (h *Handler) ArchiveGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	g, err := h.Games.ArchiveGame(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          g.ID,
		"archived":    g.Archived,
		"archived_at": g.ArchivedAt,
	})
}

func (h *Handler) Dashboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	d, err := h.Games.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, d)
}
