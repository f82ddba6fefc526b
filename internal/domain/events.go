package domain

import "time"

// Analytics event names. These strings are the wire contract with the
// collector; do not rename.
const (
	EventViewPulse     = "view_pulse"
	EventPollVote      = "poll_vote"
	EventTooltipOpened = "tooltip_opened"
	EventCommentOpened = "comment_opened"
	EventCommentPosted = "comment_posted"
	EventShareSnapshot = "share_snapshot"
	EventEnableAlert   = "enable_alert"
)

// KnownEvents indexes the valid event names.
var KnownEvents = map[string]bool{
	EventViewPulse:     true,
	EventPollVote:      true,
	EventTooltipOpened: true,
	EventCommentOpened: true,
	EventCommentPosted: true,
	EventShareSnapshot: true,
	EventEnableAlert:   true,
}

// AnalyticsEvent is a fire-and-forget interaction event. Created on
// interaction, never mutated, delivery not guaranteed.
type AnalyticsEvent struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
	At     time.Time         `json:"at"`
}
