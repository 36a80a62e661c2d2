package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/ratelimit"
)

type loginRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=1024"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login godoc
// @Summary Exchange reviewer credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} apperrors.Response
// @Failure 429 {object} apperrors.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindFailure(err))
		return
	}

	token, expiresAt, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		h.Metrics.LoginFailed()
		h.Logger.SecurityLogger("login_failed", c.ClientIP(), map[string]interface{}{"username": req.Username})
		fail(c, err)
		return
	}

	resetCtx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()
	if err := h.Limiter.Reset(resetCtx, ratelimit.Key("login", c.ClientIP())); err != nil {
		slog.Warn("Failed to reset login rate limit", "error", err)
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}
