package handlers

import (
	"net/http"

	"rps_link/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	DisplayName string `json:"display_name"`
}

// Auth creates an anonymous account and returns a token for it.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}

	user, err := h.Accounts.Register(c.Request.Context(), req.DisplayName)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}
