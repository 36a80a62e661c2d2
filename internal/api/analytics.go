package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SkillAnalytics godoc
// @Summary Candidate count and mean score per primary skill
// @Tags analytics
// @Produce json
// @Success 200 {array} database.SkillStat
// @Router /api/analytics/skills [get]
func (h *Handler) SkillAnalytics(c *gin.Context) {
	stats, err := h.Profiles.SkillDistribution(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// EvaluationAnalytics godoc
// @Summary Evaluation totals per prompt
// @Tags analytics
// @Produce json
// @Success 200 {array} database.PromptStat
// @Router /api/analytics/evaluations [get]
func (h *Handler) EvaluationAnalytics(c *gin.Context) {
	stats, err := h.Profiles.EvaluationMetrics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
