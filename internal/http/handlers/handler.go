package handlers

import (
	"errors"
	"net/http"

	"rps_link/internal/game"
	"rps_link/internal/logger"
	"rps_link/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games    *service.GameService
	Accounts *service.AccountService
}

func NewHandler(games *service.GameService, accounts *service.AccountService) *Handler {
	return &Handler{Games: games, Accounts: accounts}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (string, bool) {
	uid := c.GetString("user_id")
	return uid, uid != ""
}

type apiError struct {
	status int
	code   string
}

var errorTable = []struct {
	err error
	apiError
}{
	{game.ErrInvalidMove, apiError{http.StatusBadRequest, "invalid_move"}},
	{game.ErrInvalidMode, apiError{http.StatusBadRequest, "invalid_mode"}},
	{game.ErrCommentTooLong, apiError{http.StatusBadRequest, "comment_too_long"}},
	{game.ErrMissingHost, apiError{http.StatusBadRequest, "missing_host"}},
	{game.ErrMissingGuest, apiError{http.StatusBadRequest, "missing_guest"}},
	{service.ErrInvalidName, apiError{http.StatusBadRequest, "invalid_name"}},
	{service.ErrUnknownUser, apiError{http.StatusUnauthorized, "unknown_user"}},
	{game.ErrHostCannotPlay, apiError{http.StatusForbidden, "host_cannot_play"}},
	{game.ErrNotHost, apiError{http.StatusForbidden, "not_host"}},
	{service.ErrNotFound, apiError{http.StatusNotFound, "not_found"}},
	{game.ErrAlreadyPlayed, apiError{http.StatusConflict, "already_played"}},
	{game.ErrGameResolved, apiError{http.StatusConflict, "game_resolved"}},
	{game.ErrGameArchived, apiError{http.StatusGone, "game_archived"}},
	{service.ErrTransient, apiError{http.StatusServiceUnavailable, "try_again"}},
}

func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.apiError
		}
	}
	return apiError{http.StatusInternalServerError, "internal"}
}

// respondError writes {"error": ..., "code": ...} with the status err maps to.
// extra keys are merged into the body.
func respondError(c *gin.Context, err error, extra gin.H) {
	ae := classify(err)
	body := gin.H{"error": err.Error(), "code": ae.code}
	if ae.status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		body["error"] = http.StatusText(ae.status)
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(ae.status, body)
}
