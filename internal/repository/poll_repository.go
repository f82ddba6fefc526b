package repository

import (
	"context"
	"errors"

	"bitcoin-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PollRepository stores daily sentiment poll votes. The (voter_id, poll_date)
// primary key makes re-voting an update, never a second ballot.
type PollRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPollRepository(pool PgxPool, tracer trace.Tracer) *PollRepository {
	return &PollRepository{pool: pool, tracer: tracer}
}

// RecordVote inserts or replaces a voter's choice for the given poll date.
func (r *PollRepository) RecordVote(ctx context.Context, vote domain.PollVote) error {
	_, span := r.tracer.Start(ctx, "poll-repo.record-vote")
	defer span.End()
	span.SetAttributes(attribute.String("poll.date", vote.PollDate))

	_, err := r.pool.Exec(ctx,
		`INSERT INTO poll_votes (voter_id, poll_date, choice, voted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (voter_id, poll_date) DO UPDATE SET
		     choice = EXCLUDED.choice,
		     voted_at = EXCLUDED.voted_at`,
		vote.VoterID, vote.PollDate, string(vote.Choice), vote.VotedAt,
	)
	return err
}

// Tallies returns the per-choice vote counts for a poll date. Choices with no
// votes are present with a zero count.
func (r *PollRepository) Tallies(ctx context.Context, pollDate string) (map[domain.PollChoice]int, error) {
	_, span := r.tracer.Start(ctx, "poll-repo.tallies")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT choice, COUNT(*)
		 FROM poll_votes
		 WHERE poll_date = $1
		 GROUP BY choice`,
		pollDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tallies := make(map[domain.PollChoice]int, len(domain.PollChoices))
	for _, c := range domain.PollChoices {
		tallies[c] = 0
	}
	for rows.Next() {
		var choice string
		var count int
		if err := rows.Scan(&choice, &count); err != nil {
			return nil, err
		}
		tallies[domain.PollChoice(choice)] = count
	}
	return tallies, rows.Err()
}

// VoteFor returns a voter's recorded choice for a poll date, or "" when the
// voter has not voted.
func (r *PollRepository) VoteFor(ctx context.Context, voterID, pollDate string) (domain.PollChoice, error) {
	_, span := r.tracer.Start(ctx, "poll-repo.vote-for")
	defer span.End()

	var choice string
	err := r.pool.QueryRow(ctx,
		`SELECT choice FROM poll_votes WHERE voter_id = $1 AND poll_date = $2`,
		voterID, pollDate,
	).Scan(&choice)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return domain.PollChoice(choice), nil
}
