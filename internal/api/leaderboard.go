package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TopCandidates godoc
// @Summary Highest ranked candidates
// @Description Returns min(n, ranked candidates) entries. n is capped at the
// @Description configured max_leaderboard_limit (100 by default), so a larger
// @Description n returns at most that many.
// @Tags leaderboard
// @Produce json
// @Param n query int false "How many entries (default 10, capped at max_leaderboard_limit)" maximum(100)
// @Success 200 {array} leaderboard.Entry
// @Router /api/leaderboard/top10 [get]
func (h *Handler) TopCandidates(c *gin.Context) {
	entries, err := h.Leaderboard.TopN(c.Request.Context(), queryInt(c, "n"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// LeaderboardPage godoc
// @Summary Paginated ranking
// @Tags leaderboard
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {object} leaderboard.Page
// @Router /api/leaderboard [get]
func (h *Handler) LeaderboardPage(c *gin.Context) {
	page, err := h.Leaderboard.Page(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CandidateRank godoc
// @Summary Rank and percentile of one candidate
// @Tags leaderboard
// @Produce json
// @Param id path int true "Candidate id"
// @Success 200 {object} leaderboard.Position
// @Failure 404 {object} apperrors.Response
// @Router /api/candidates/{id}/rank [get]
func (h *Handler) CandidateRank(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	pos, err := h.Leaderboard.RankOf(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}
