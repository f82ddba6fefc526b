package handler

import (
	"context"

	"bitcoin-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// PulseReader serves the assembled snapshot and the texts built from it.
type PulseReader interface {
	GetSnapshot(ctx context.Context) (domain.PulseSnapshot, error)
	GetSummary(ctx context.Context) (string, domain.PulseSnapshot, error)
	GetReport(ctx context.Context) (string, error)
	GetHistory(ctx context.Context, limit int) ([]domain.PulseSnapshot, error)
}

// PollManager runs the daily sentiment poll.
type PollManager interface {
	RecordVote(ctx context.Context, voterID string, choice domain.PollChoice) (domain.PollResults, error)
	GetResults(ctx context.Context, voterID string) (domain.PollResults, error)
}

// EventTracker records product events, fire-and-forget.
type EventTracker interface {
	Track(name string, params map[string]string)
}

type Handler struct {
	tracer       trace.Tracer
	pulseService PulseReader
	pollService  PollManager
	tracker      EventTracker

	// EventsAPIKey guards the ingest endpoint when set. Empty disables auth.
	EventsAPIKey string
}

func New(tracer trace.Tracer, pulseService PulseReader, pollService PollManager, tracker EventTracker) *Handler {
	return &Handler{
		tracer:       tracer,
		pulseService: pulseService,
		pollService:  pollService,
		tracker:      tracker,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/pulse", h.GetPulse)
	r.GET("/api/pulse/summary", h.GetSummary)
	r.GET("/api/pulse/report", h.GetReport)
	r.GET("/api/pulse/history", h.GetHistory)
	r.GET("/api/halving", h.GetHalving)
	r.POST("/api/poll/vote", h.PostVote)
	r.GET("/api/poll/results", h.GetPollResults)
	r.POST("/api/events", APIKeyAuth(h.EventsAPIKey), h.PostEvent)
}

// track is a nil-safe shortcut; handlers never fail because analytics did.
func (h *Handler) track(name string, params map[string]string) {
	if h.tracker != nil {
		h.tracker.Track(name, params)
	}
}
