package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/evaluation"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/profile"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/security"
)

// GetCandidate godoc
// @Summary Candidate profile with evaluations and ranking
// @Tags candidates
// @Produce json
// @Param id path int true "Candidate id"
// @Success 200 {object} profile.Detail
// @Failure 404 {object} apperrors.Response
// @Router /api/candidates/{id} [get]
func (h *Handler) GetCandidate(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	detail, err := h.Profiles.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CandidatesBySkill godoc
// @Summary Candidates with a primary or secondary skill
// @Tags candidates
// @Produce json
// @Param skill path string true "Skill"
// @Success 200 {array} database.CandidateSummary
// @Router /api/candidates/skill/{skill} [get]
func (h *Handler) CandidatesBySkill(c *gin.Context) {
	out, err := h.Profiles.BySkill(c.Request.Context(), c.Param("skill"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateCandidate godoc
// @Summary Register a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param candidate body profile.CandidateInput true "Candidate"
// @Success 201 {object} database.Candidate
// @Failure 400 {object} apperrors.Response
// @Failure 409 {object} apperrors.Response
// @Router /api/candidates [post]
func (h *Handler) CreateCandidate(c *gin.Context) {
	var in profile.CandidateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, bindFailure(err))
		return
	}

	created, err := h.Profiles.CreateCandidate(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteCandidate godoc
// @Summary Delete a candidate with its evaluations and ranking
// @Tags candidates
// @Security BearerAuth
// @Param id path int true "Candidate id"
// @Success 204
// @Failure 404 {object} apperrors.Response
// @Router /api/candidates/{id} [delete]
func (h *Handler) DeleteCandidate(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.Profiles.DeleteCandidate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordEvaluation godoc
// @Summary Record a scored response
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate id"
// @Param evaluation body evaluation.Input true "Evaluation"
// @Success 201 {object} database.Evaluation
// @Failure 400 {object} apperrors.Response
// @Failure 404 {object} apperrors.Response
// @Failure 409 {object} apperrors.Response
// @Router /api/candidates/{id}/evaluations [post]
func (h *Handler) RecordEvaluation(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var in evaluation.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, bindFailure(err))
		return
	}
	if err := security.ValidateText("response", in.Response, h.security.MaxResponseLength); err != nil {
		fail(c, apperrors.NewValidationErrorWithMap(map[string]string{"response": err.Error()}))
		return
	}

	e, err := h.Evaluations.Record(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.Metrics.EvaluationRecorded(e.PromptType)
	c.JSON(http.StatusCreated, e)
}

// DeleteEvaluation godoc
// @Summary Remove an evaluation so the prompt can be re-evaluated
// @Tags evaluations
// @Security BearerAuth
// @Param id path int true "Candidate id"
// @Param promptId path string true "Prompt id"
// @Success 204
// @Failure 404 {object} apperrors.Response
// @Router /api/candidates/{id}/evaluations/{promptId} [delete]
func (h *Handler) DeleteEvaluation(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.Evaluations.Delete(c.Request.Context(), id, c.Param("promptId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search godoc
// @Summary Search candidates by name, email or primary skill
// @Tags candidates
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} database.CandidateSummary
// @Failure 400 {object} apperrors.Response
// @Router /api/search [get]
func (h *Handler) Search(c *gin.Context) {
	out, err := h.Profiles.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
