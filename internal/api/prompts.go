package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/rubric"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/scoring"
)

type promptSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Rubric      rubric.Categories `json:"rubric"`
	TotalMax    int               `json:"total_possible"`
}

type scoresRequest struct {
	RubricScores scoring.Scores `json:"rubric_scores" binding:"required"`
}

// ListPrompts godoc
// @Summary List scenario prompts with their rubrics
// @Tags prompts
// @Produce json
// @Success 200 {array} promptSummary
// @Router /api/prompts [get]
func (h *Handler) ListPrompts(c *gin.Context) {
	rubrics := rubric.List()
	out := make([]promptSummary, 0, len(rubrics))
	for _, r := range rubrics {
		out = append(out, promptSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Rubric:      r.Categories,
			TotalMax:    r.TotalMax(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetPrompt godoc
// @Summary Get one prompt including its text
// @Tags prompts
// @Produce json
// @Param id path string true "Prompt id"
// @Success 200 {object} rubric.Rubric
// @Failure 404 {object} apperrors.Response
// @Router /api/prompts/{id} [get]
func (h *Handler) GetPrompt(c *gin.Context) {
	r, ok := rubric.Get(c.Param("id"))
	if !ok {
		fail(c, apperrors.NotFound("prompt", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) bindScores(c *gin.Context) (string, scoring.Scores, bool) {
	promptID := c.Param("id")
	if _, ok := rubric.Get(promptID); !ok {
		fail(c, apperrors.NotFound("prompt", promptID))
		return "", nil, false
	}

	var req scoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindFailure(err))
		return "", nil, false
	}
	return promptID, req.RubricScores, true
}

// ValidateScores godoc
// @Summary Validate a complete score set against a rubric
// @Tags prompts
// @Accept json
// @Produce json
// @Param id path string true "Prompt id"
// @Success 200 {object} scoring.Progress
// @Failure 400 {object} apperrors.Response
// @Router /api/prompts/{id}/validate [post]
func (h *Handler) ValidateScores(c *gin.Context) {
	promptID, scores, ok := h.bindScores(c)
	if !ok {
		return
	}

	if problems := scoring.Check(promptID, scores); len(problems) > 0 {
		fail(c, apperrors.NewValidationError("rubric scores are invalid", problems))
		return
	}
	c.JSON(http.StatusOK, scoring.ProgressOf(promptID, scores))
}

// TotalScores godoc
// @Summary Total a possibly partial score set
// @Tags prompts
// @Accept json
// @Produce json
// @Param id path string true "Prompt id"
// @Success 200 {object} scoring.Progress
// @Router /api/prompts/{id}/total [post]
func (h *Handler) TotalScores(c *gin.Context) {
	promptID, scores, ok := h.bindScores(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, scoring.ProgressOf(promptID, scores))
}
