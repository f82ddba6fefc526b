package handler

import (
	"net/http"
	"strconv"

	"bitcoin-pulse/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetPulse godoc
// @Summary      Get the current market snapshot
// @Description  Returns price, sentiment, and chain data with per-section availability flags
// @Tags         pulse
// @Produce      json
// @Success      200  {object}  domain.PulseSnapshot
// @Failure      503  {object}  map[string]string
// @Router       /api/pulse [get]
func (h *Handler) GetPulse(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-pulse")
	defer span.End()

	snapshot, err := h.pulseService.GetSnapshot(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	h.track(domain.EventViewPulse, map[string]string{"surface": "api"})
	c.JSON(http.StatusOK, snapshot)
}

// GetSummary godoc
// @Summary      Get the plain-English daily summary
// @Description  Returns the templated one-paragraph market summary plus the snapshot behind it
// @Tags         pulse
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/pulse/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-summary")
	defer span.End()

	summary, snapshot, err := h.pulseService.GetSummary(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":  summary,
		"snapshot": snapshot,
	})
}

// GetReport godoc
// @Summary      Get the full daily market report
// @Description  Returns the sectioned markdown report for today
// @Tags         pulse
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/pulse/report [get]
func (h *Handler) GetReport(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-report")
	defer span.End()

	report, err := h.pulseService.GetReport(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetHistory godoc
// @Summary      Get recent daily snapshots
// @Description  Returns up to 30 persisted daily snapshots, newest first
// @Tags         pulse
// @Produce      json
// @Param        days  query     int  false  "number of days (1-30, default 7)"
// @Success      200   {object}  map[string]interface{}
// @Failure      503   {object}  map[string]string
// @Router       /api/pulse/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	history, err := h.pulseService.GetHistory(ctx, days)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":      len(history),
		"snapshots": history,
	})
}

// GetHalving godoc
// @Summary      Get the halving countdown
// @Description  Returns block height, current reward, and the estimated halving date
// @Tags         pulse
// @Produce      json
// @Success      200  {object}  domain.Halving
// @Failure      503  {object}  map[string]string
// @Router       /api/halving [get]
func (h *Handler) GetHalving(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-halving")
	defer span.End()

	snapshot, err := h.pulseService.GetSnapshot(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if !snapshot.HasChain {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chain data currently unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"block_height":     snapshot.BlockHeight,
		"block_reward_btc": snapshot.BlockRewardBTC,
		"blocks_remaining": snapshot.BlocksToHalving,
		"days_remaining":   snapshot.DaysToHalving,
		"estimated_at":     snapshot.HalvingEstimate,
	})
}
