package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type eventRequest struct {
	Name   string            `json:"name" binding:"required"`
	Params map[string]string `json:"params"`
}

// PostEvent godoc
// @Summary      Record a product event
// @Description  Accepts an analytics event for asynchronous delivery; always cheap for the caller
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        event  body  eventRequest  true  "Event"
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/events [post]
func (h *Handler) PostEvent(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.post-event")
	defer span.End()

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	h.track(req.Name, req.Params)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
