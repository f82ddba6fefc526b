package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"bitcoin-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Poll cache entries outlive the poll day so yesterday's results stay
// readable, then expire on their own.
const pollCacheTTL = 48 * time.Hour

// PollStore is the durable vote store.
type PollStore interface {
	RecordVote(ctx context.Context, vote domain.PollVote) error
	Tallies(ctx context.Context, pollDate string) (map[domain.PollChoice]int, error)
	VoteFor(ctx context.Context, voterID, pollDate string) (domain.PollChoice, error)
}

// PollService runs the daily one-vote-per-voter sentiment poll. Votes land
// in Postgres when it is up; without it the service keeps the day's votes in
// memory so the poll never disappears from the page.
type PollService struct {
	tracer trace.Tracer
	store  PollStore
	redis  RedisClient
	now    func() time.Time

	mu       sync.Mutex
	memVotes map[string]map[string]domain.PollChoice // pollDate -> voterID -> choice
}

func NewPollService(tracer trace.Tracer, store PollStore, redisClient RedisClient) *PollService {
	return &PollService{
		tracer:   tracer,
		store:    store,
		redis:    redisClient,
		now:      time.Now,
		memVotes: make(map[string]map[string]domain.PollChoice),
	}
}

// RecordVote stores a voter's choice for today. Voting again replaces the
// earlier choice. The updated results are returned so the caller can render
// them immediately.
func (s *PollService) RecordVote(ctx context.Context, voterID string, choice domain.PollChoice) (domain.PollResults, error) {
	ctx, span := s.tracer.Start(ctx, "poll-service.record-vote")
	defer span.End()

	if voterID == "" {
		return domain.PollResults{}, ErrMissingVoter
	}
	if !choice.IsValid() {
		return domain.PollResults{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	pollDate := domain.PollDate(s.now())
	span.SetAttributes(attribute.String("poll.date", pollDate))

	vote := domain.PollVote{
		VoterID:  voterID,
		Choice:   choice,
		PollDate: pollDate,
		VotedAt:  s.now().UTC(),
	}

	stored := false
	if s.store != nil {
		if err := s.store.RecordVote(ctx, vote); err != nil {
			log.Printf("poll vote persist error, keeping in memory: %v", err)
		} else {
			stored = true
			s.forgetInMemory(pollDate, voterID)
		}
	}
	if !stored {
		s.recordInMemory(vote)
	}

	s.cacheVoterChoice(ctx, pollDate, voterID, choice)
	s.invalidateTallyCache(ctx, pollDate)

	return s.GetResults(ctx, voterID)
}

// GetResults returns today's tallies plus the requesting voter's own choice.
// An empty voterID skips the own-vote lookup.
func (s *PollService) GetResults(ctx context.Context, voterID string) (domain.PollResults, error) {
	ctx, span := s.tracer.Start(ctx, "poll-service.get-results")
	defer span.End()

	pollDate := domain.PollDate(s.now())
	results := domain.PollResults{Date: pollDate}

	tallies, err := s.tallies(ctx, pollDate)
	if err != nil {
		return results, err
	}
	results.Tallies = tallies
	for _, n := range tallies {
		results.Total += n
	}

	if voterID != "" {
		results.Own = s.voteFor(ctx, pollDate, voterID)
	}
	return results, nil
}

func (s *PollService) tallies(ctx context.Context, pollDate string) (map[domain.PollChoice]int, error) {
	if cached := s.cachedTallies(ctx, pollDate); cached != nil {
		return cached, nil
	}

	if s.store != nil {
		tallies, err := s.store.Tallies(ctx, pollDate)
		if err == nil {
			s.mergeMemory(pollDate, tallies)
			s.cacheTallies(ctx, pollDate, tallies)
			return tallies, nil
		}
		log.Printf("poll tally query error, using in-memory votes: %v", err)
	}

	tallies := make(map[domain.PollChoice]int, len(domain.PollChoices))
	for _, c := range domain.PollChoices {
		tallies[c] = 0
	}
	s.mergeMemory(pollDate, tallies)
	return tallies, nil
}

func (s *PollService) voteFor(ctx context.Context, pollDate, voterID string) domain.PollChoice {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, voterKey(pollDate, voterID)).Result()
		if err == nil {
			return domain.PollChoice(val)
		}
		if err != redis.Nil {
			log.Printf("poll voter cache read error: %v", err)
		}
	}

	if s.store != nil {
		choice, err := s.store.VoteFor(ctx, voterID, pollDate)
		if err != nil {
			log.Printf("poll own-vote query error: %v", err)
		} else if choice != "" {
			return choice
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memVotes[pollDate][voterID]
}

func (s *PollService) recordInMemory(vote domain.PollVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.memVotes[vote.PollDate]
	if !ok {
		day = make(map[string]domain.PollChoice)
		s.memVotes[vote.PollDate] = day
		// keep only today and yesterday
		for d := range s.memVotes {
			if d != vote.PollDate && len(s.memVotes) > 2 {
				delete(s.memVotes, d)
			}
		}
	}
	day[vote.VoterID] = vote.Choice
}

// forgetInMemory drops a voter's fallback entry once the store holds their
// vote, so a re-vote after an outage heals is not counted twice.
func (s *PollService) forgetInMemory(pollDate, voterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memVotes[pollDate], voterID)
}

// mergeMemory folds votes that never reached Postgres into the tallies.
func (s *PollService) mergeMemory(pollDate string, tallies map[domain.PollChoice]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, choice := range s.memVotes[pollDate] {
		tallies[choice]++
	}
}

func (s *PollService) cachedTallies(ctx context.Context, pollDate string) map[domain.PollChoice]int {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, tallyKey(pollDate)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("poll tally cache read error: %v", err)
		return nil
	}
	var tallies map[domain.PollChoice]int
	if err := json.Unmarshal(data, &tallies); err != nil {
		return nil
	}
	return tallies
}

func (s *PollService) cacheTallies(ctx context.Context, pollDate string, tallies map[domain.PollChoice]int) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(tallies)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, tallyKey(pollDate), data, pollCacheTTL).Err(); err != nil {
		log.Printf("poll tally cache write error: %v", err)
	}
}

func (s *PollService) cacheVoterChoice(ctx context.Context, pollDate, voterID string, choice domain.PollChoice) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, voterKey(pollDate, voterID), string(choice), pollCacheTTL).Err(); err != nil {
		log.Printf("poll voter cache write error: %v", err)
	}
}

func (s *PollService) invalidateTallyCache(ctx context.Context, pollDate string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, tallyKey(pollDate)).Err(); err != nil {
		log.Printf("poll tally cache invalidate error: %v", err)
	}
}

func tallyKey(pollDate string) string {
	return "poll:" + pollDate + ":tallies"
}

func voterKey(pollDate, voterID string) string {
	return "poll:" + pollDate + ":voter:" + voterID
}
