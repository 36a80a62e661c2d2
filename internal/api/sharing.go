package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShareCandidate godoc
// @Summary Issue a share link, replacing any previous one
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate id"
// @Success 201 {object} sharing.Share
// @Failure 404 {object} apperrors.Response
// @Router /api/candidates/{id}/share [post]
func (h *Handler) ShareCandidate(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	share, err := h.Sharing.Issue(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	h.Metrics.ShareIssued()
	c.JSON(http.StatusCreated, share)
}

// RevokeShare godoc
// @Summary Revoke the candidate's share link
// @Tags sharing
// @Security BearerAuth
// @Param id path int true "Candidate id"
// @Success 204
// @Failure 404 {object} apperrors.Response
// @Router /api/candidates/{id}/share [delete]
func (h *Handler) RevokeShare(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.Sharing.Revoke(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SharedProfile godoc
// @Summary Read-only profile behind a share link
// @Tags sharing
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} profile.Detail
// @Failure 404 {object} apperrors.Response
// @Failure 429 {object} apperrors.Response
// @Router /api/share/{token} [get]
func (h *Handler) SharedProfile(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := h.Sharing.Resolve(ctx, c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}

	detail, err := h.Profiles.Detail(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	h.Metrics.ShareResolved()
	c.JSON(http.StatusOK, detail)
}
