package handler

import (
	"errors"
	"net/http"

	"bitcoin-pulse/internal/domain"
	"bitcoin-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type voteRequest struct {
	Choice string `json:"choice" binding:"required"`
}

// voterID identifies the voter: an explicit header when the client keeps its
// own id, otherwise the client IP.
func voterID(c *gin.Context) string {
	if id := c.GetHeader("X-Voter-ID"); id != "" {
		return id
	}
	return c.ClientIP()
}

// PostVote godoc
// @Summary      Cast today's poll vote
// @Description  Records an up/sideways/down vote; voting again replaces the earlier choice
// @Tags         poll
// @Accept       json
// @Produce      json
// @Param        vote  body  voteRequest  true  "Vote"
// @Success      200  {object}  domain.PollResults
// @Failure      400  {object}  map[string]string
// @Router       /api/poll/vote [post]
func (h *Handler) PostVote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-vote")
	defer span.End()

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "choice is required"})
		return
	}
	choice := domain.PollChoice(req.Choice)
	span.SetAttributes(attribute.String("poll.choice", req.Choice))

	results, err := h.pollService.RecordVote(ctx, voterID(c), choice)
	if err != nil {
		if errors.Is(err, service.ErrInvalidChoice) || errors.Is(err, service.ErrMissingVoter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.track(domain.EventPollVote, map[string]string{"choice": req.Choice})
	c.JSON(http.StatusOK, results)
}

// GetPollResults godoc
// @Summary      Get today's poll results
// @Description  Returns per-choice tallies and the caller's own vote if any
// @Tags         poll
// @Produce      json
// @Success      200  {object}  domain.PollResults
// @Failure      500  {object}  map[string]string
// @Router       /api/poll/results [get]
func (h *Handler) GetPollResults(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-poll-results")
	defer span.End()

	results, err := h.pollService.GetResults(ctx, voterID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}
