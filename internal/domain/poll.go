package domain

import "time"

// PollChoice is a daily direction call: up, sideways, or down.
type PollChoice string

const (
	PollUp       PollChoice = "up"
	PollSideways PollChoice = "sideways"
	PollDown     PollChoice = "down"
)

// PollChoices lists the valid choices in display order.
var PollChoices = []PollChoice{PollUp, PollSideways, PollDown}

func (c PollChoice) IsValid() bool {
	return c == PollUp || c == PollSideways || c == PollDown
}

// PollVote is one voter's call for one day. Re-voting overwrites.
type PollVote struct {
	VoterID  string     `json:"voter_id"`
	Choice   PollChoice `json:"choice"`
	PollDate string     `json:"poll_date"` // YYYY-MM-DD, UTC
	VotedAt  time.Time  `json:"voted_at"`
}

// PollResults is the aggregate for one poll day, plus the asking voter's
// own choice when known.
type PollResults struct {
	Date    string             `json:"date"`
	Own     PollChoice         `json:"own,omitempty"`
	Tallies map[PollChoice]int `json:"tallies"`
	Total   int                `json:"total"`
}

// PollDate formats the date-scoped poll key component for a point in time.
func PollDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
