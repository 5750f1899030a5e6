package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference/internal/apperr"
	"conference/internal/scoring"
)

func (h *Handler) submitScore(c *gin.Context) {
	var req scoring.SubmitInput
	if !bind(c, &req) {
		return
	}
	e, err := h.svc.Scoring.Submit(c.Request.Context(), role(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) leaderboard(c *gin.Context) {
	committee := c.Query("committeeId")
	if !scope(c, &committee) {
		h.fail(c, apperr.ErrForbidden)
		return
	}
	board, err := h.svc.Scoring.Leaderboard(c.Request.Context(), c.Query("eventId"), committee)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eventId": c.Query("eventId"), "committeeId": committee, "standings": board})
}
