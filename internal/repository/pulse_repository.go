package repository

import (
	"context"
	"time"

	"bitcoin-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createPulseTables = `
CREATE TABLE IF NOT EXISTS pulse_snapshots (
    snapshot_date     DATE             NOT NULL PRIMARY KEY,
    price_usd         NUMERIC          NOT NULL,
    price_change_pct  NUMERIC          NOT NULL,
    market_cap_usd    NUMERIC          NOT NULL,
    volume_24h_usd    NUMERIC          NOT NULL,
    sentiment_value   INT              NOT NULL,
    sentiment_label   TEXT             NOT NULL,
    block_height      BIGINT           NOT NULL,
    days_to_halving   INT              NOT NULL,
    network_activity  TEXT             NOT NULL,
    fetched_at        TIMESTAMPTZ      NOT NULL
);

CREATE TABLE IF NOT EXISTS poll_votes (
    voter_id    TEXT        NOT NULL,
    poll_date   DATE        NOT NULL,
    choice      TEXT        NOT NULL,
    voted_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (voter_id, poll_date)
);

CREATE INDEX IF NOT EXISTS idx_poll_votes_date
    ON poll_votes (poll_date);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PulseRepository stores the once-per-day snapshot history used by the
// report composer.
type PulseRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPulseRepository(pool PgxPool, tracer trace.Tracer) *PulseRepository {
	return &PulseRepository{pool: pool, tracer: tracer}
}

func (r *PulseRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "pulse-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createPulseTables)
	return err
}

// UpsertSnapshot records a snapshot under its UTC calendar date; repeated
// writes on the same day keep the latest values.
func (r *PulseRepository) UpsertSnapshot(ctx context.Context, s domain.PulseSnapshot) error {
	_, span := r.tracer.Start(ctx, "pulse-repo.upsert-snapshot")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO pulse_snapshots (
		     snapshot_date, price_usd, price_change_pct, market_cap_usd, volume_24h_usd,
		     sentiment_value, sentiment_label, block_height, days_to_halving,
		     network_activity, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (snapshot_date) DO UPDATE SET
		     price_usd = EXCLUDED.price_usd,
		     price_change_pct = EXCLUDED.price_change_pct,
		     market_cap_usd = EXCLUDED.market_cap_usd,
		     volume_24h_usd = EXCLUDED.volume_24h_usd,
		     sentiment_value = EXCLUDED.sentiment_value,
		     sentiment_label = EXCLUDED.sentiment_label,
		     block_height = EXCLUDED.block_height,
		     days_to_halving = EXCLUDED.days_to_halving,
		     network_activity = EXCLUDED.network_activity,
		     fetched_at = EXCLUDED.fetched_at`,
		s.FetchedAt.UTC().Truncate(24*time.Hour),
		s.PriceUSD, s.PriceChangePct, s.MarketCapUSD, s.Volume24hUSD,
		s.SentimentValue, string(s.SentimentLabel), s.BlockHeight, s.DaysToHalving,
		string(s.NetworkActivity), s.FetchedAt,
	)
	return err
}

// RecentSnapshots returns up to limit stored snapshots, newest first.
func (r *PulseRepository) RecentSnapshots(ctx context.Context, limit int) ([]domain.PulseSnapshot, error) {
	_, span := r.tracer.Start(ctx, "pulse-repo.recent-snapshots")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT price_usd, price_change_pct, market_cap_usd, volume_24h_usd,
		        sentiment_value, sentiment_label, block_height, days_to_halving,
		        network_activity, fetched_at
		 FROM pulse_snapshots
		 ORDER BY snapshot_date DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.PulseSnapshot
	for rows.Next() {
		var s domain.PulseSnapshot
		var label, activity string
		if err := rows.Scan(
			&s.PriceUSD, &s.PriceChangePct, &s.MarketCapUSD, &s.Volume24hUSD,
			&s.SentimentValue, &label, &s.BlockHeight, &s.DaysToHalving,
			&activity, &s.FetchedAt,
		); err != nil {
			return nil, err
		}
		s.SentimentLabel = domain.SentimentLabel(label)
		s.NetworkActivity = domain.NetworkActivity(activity)
		s.HasPrice = true
		s.HasSentiment = true
		s.HasChain = true
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
