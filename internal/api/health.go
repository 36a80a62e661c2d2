package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) pingStorage(c *gin.Context) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	return h.Repo.Ping(ctx)
}

// Health godoc
// @Summary Liveness and storage check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/health [get]
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  "ok",
	}

	if err := h.pingStorage(c); err != nil {
		resp["status"] = "degraded"
		resp["database"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthDetails godoc
// @Summary Connection pool, cache and rate limiter internals
// @Tags health
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} apperrors.Response
// @Failure 503 {object} map[string]interface{}
// @Router /api/health/details [get]
func (h *Handler) HealthDetails(c *gin.Context) {
	resp := gin.H{
		"status":       "ok",
		"database":     "ok",
		"metrics":      h.Metrics.GetStats(),
		"cache":        h.Leaderboard.GetStats(),
		"rate_limiter": h.Limiter.GetStats(),
	}

	if err := h.pingStorage(c); err != nil {
		resp["status"] = "degraded"
		resp["database"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp["pool"] = h.Repo.DB().GetPoolStats()
	c.JSON(http.StatusOK, resp)
}
