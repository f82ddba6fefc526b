package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitcoin-pulse/internal/domain"
	"bitcoin-pulse/internal/service"
)

func pollResults() domain.PollResults {
	return domain.PollResults{
		Date: "2026-08-29",
		Own:  domain.PollUp,
		Tallies: map[domain.PollChoice]int{
			domain.PollUp:       3,
			domain.PollSideways: 1,
			domain.PollDown:     2,
		},
		Total: 6,
	}
}

func TestPostVote(t *testing.T) {
	poll := &stubPollManager{results: pollResults()}
	tracker := &stubTracker{}
	r := newTestRouter(&stubPulseReader{}, poll, tracker)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/poll/vote", strings.NewReader(`{"choice":"up"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Voter-ID", "voter-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if poll.lastVoter != "voter-1" || poll.lastVote != domain.PollUp {
		t.Fatalf("vote not forwarded: voter=%q choice=%q", poll.lastVoter, poll.lastVote)
	}
	var results domain.PollResults
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if results.Total != 6 || results.Own != domain.PollUp {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(tracker.events) != 1 || tracker.events[0] != domain.EventPollVote {
		t.Fatalf("expected poll_vote event, got %v", tracker.events)
	}
}

func TestPostVoteMissingBody(t *testing.T) {
	r := newTestRouter(&stubPulseReader{}, &stubPollManager{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/poll/vote", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPostVoteInvalidChoice(t *testing.T) {
	poll := &stubPollManager{err: service.ErrInvalidChoice}
	r := newTestRouter(&stubPulseReader{}, poll, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/poll/vote", strings.NewReader(`{"choice":"moon"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPostVoteFallsBackToClientIP(t *testing.T) {
	poll := &stubPollManager{results: pollResults()}
	r := newTestRouter(&stubPulseReader{}, poll, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/poll/vote", strings.NewReader(`{"choice":"down"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if poll.lastVoter == "" {
		t.Fatal("expected client IP fallback voter id")
	}
}

func TestGetPollResults(t *testing.T) {
	poll := &stubPollManager{results: pollResults()}
	r := newTestRouter(&stubPulseReader{}, poll, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/poll/results", nil)
	req.Header.Set("X-Voter-ID", "voter-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var results domain.PollResults
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if results.Tallies[domain.PollUp] != 3 {
		t.Fatalf("unexpected tallies: %+v", results.Tallies)
	}
	if poll.lastVoter != "voter-1" {
		t.Fatalf("voter id not forwarded: %q", poll.lastVoter)
	}
}

func TestPostEvent(t *testing.T) {
	tracker := &stubTracker{}
	r := newTestRouter(&stubPulseReader{}, &stubPollManager{}, tracker)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"name":"tooltip_opened","params":{"metric":"halving"}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if len(tracker.events) != 1 || tracker.events[0] != "tooltip_opened" {
		t.Fatalf("event not tracked: %v", tracker.events)
	}
}

func TestPostEventMissingName(t *testing.T) {
	r := newTestRouter(&stubPulseReader{}, &stubPollManager{}, &stubTracker{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"params":{}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPostEventWithNilTracker(t *testing.T) {
	r := newTestRouter(&stubPulseReader{}, &stubPollManager{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"name":"view_pulse"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with nil tracker, got %d", w.Code)
	}
}
