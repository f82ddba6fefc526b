package domain

import (
	"testing"
	"time"
)

func TestSentimentLabelFromValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value int
		want  SentimentLabel
	}{
		{0, SentimentExtremeFear},
		{24, SentimentExtremeFear},
		{25, SentimentFearful},
		{44, SentimentFearful},
		{45, SentimentNeutral},
		{54, SentimentNeutral},
		{55, SentimentGreedy},
		{74, SentimentGreedy},
		{75, SentimentExtremeGreed},
		{100, SentimentExtremeGreed},
	}
	for _, tc := range cases {
		if got := SentimentLabelFromValue(tc.value); got != tc.want {
			t.Errorf("value %d: expected %s, got %s", tc.value, tc.want, got)
		}
	}
}

func TestClassifyNetworkActivity(t *testing.T) {
	t.Parallel()

	if got := ClassifyNetworkActivity(10_000, 200); got != ActivityQuiet {
		t.Fatalf("expected quiet, got %s", got)
	}
	if got := ClassifyNetworkActivity(80_000, 1_000); got != ActivitySteady {
		t.Fatalf("expected steady, got %s", got)
	}
	if got := ClassifyNetworkActivity(200_000, 1_000); got != ActivityBusy {
		t.Fatalf("expected busy, got %s", got)
	}
	// High throughput alone is enough for busy.
	if got := ClassifyNetworkActivity(10_000, 3_000); got != ActivityBusy {
		t.Fatalf("expected busy on throughput, got %s", got)
	}
}

func TestHalvingAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	h := HalvingAt(840_000, now)
	if h.Epoch != 4 {
		t.Fatalf("expected epoch 4, got %d", h.Epoch)
	}
	if h.RewardBTC != 3.125 {
		t.Fatalf("expected reward 3.125, got %v", h.RewardBTC)
	}
	if h.BlocksRemaining != 210_000 {
		t.Fatalf("expected 210000 blocks remaining, got %d", h.BlocksRemaining)
	}
	// 210000 blocks at 10 minutes each is 1458.33 days.
	if h.DaysRemaining != 1459 {
		t.Fatalf("expected 1459 days remaining, got %d", h.DaysRemaining)
	}
	if !h.EstimatedAt.Equal(now.Add(210_000 * TargetBlockInterval)) {
		t.Fatalf("unexpected estimate: %v", h.EstimatedAt)
	}

	h = HalvingAt(1_049_999, now)
	if h.Epoch != 4 || h.BlocksRemaining != 1 {
		t.Fatalf("expected last block of epoch 4, got epoch=%d remaining=%d", h.Epoch, h.BlocksRemaining)
	}
	if h.DaysRemaining != 1 {
		t.Fatalf("expected 1 day remaining, got %d", h.DaysRemaining)
	}

	h = HalvingAt(-5, now)
	if h.Height != 0 || h.Epoch != 0 || h.RewardBTC != 50 {
		t.Fatalf("negative height should clamp to genesis: %+v", h)
	}
}

func TestPollChoiceValidation(t *testing.T) {
	t.Parallel()

	for _, c := range PollChoices {
		if !c.IsValid() {
			t.Fatalf("expected %s to be valid", c)
		}
	}
	if PollChoice("moon").IsValid() {
		t.Fatal("expected moon to be invalid")
	}
}

func TestPollDate(t *testing.T) {
	t.Parallel()

	// Late evening in a western timezone is already the next UTC day.
	loc := time.FixedZone("PST", -8*3600)
	ts := time.Date(2026, 3, 14, 22, 30, 0, 0, loc)
	if got := PollDate(ts); got != "2026-03-15" {
		t.Fatalf("expected 2026-03-15, got %s", got)
	}
}

func TestKnownEvents(t *testing.T) {
	t.Parallel()

	names := []string{
		EventViewPulse, EventPollVote, EventTooltipOpened,
		EventCommentOpened, EventCommentPosted, EventShareSnapshot, EventEnableAlert,
	}
	if len(KnownEvents) != len(names) {
		t.Fatalf("expected %d known events, got %d", len(names), len(KnownEvents))
	}
	for _, n := range names {
		if !KnownEvents[n] {
			t.Fatalf("expected %s to be known", n)
		}
	}
}
