package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"bitcoin-pulse/internal/domain"
	"bitcoin-pulse/internal/provider"
	"bitcoin-pulse/internal/pulse"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	snapshotCacheKey = "pulse:snapshot"
	snapshotCacheTTL = 90 * time.Second

	defaultHistoryDays = 7
	maxHistoryDays     = 30
)

// MarketProvider supplies CoinGecko market data.
type MarketProvider interface {
	FetchBitcoin(ctx context.Context) (*provider.BitcoinMarket, error)
	FetchMarketRange(ctx context.Context, days int) (*domain.MarketRange, error)
}

// SentimentProvider supplies the Fear & Greed index.
type SentimentProvider interface {
	FetchLatest(ctx context.Context) (*provider.FearGreedPoint, error)
	FetchHistory(ctx context.Context, limit int) ([]provider.FearGreedPoint, error)
}

// MempoolProvider supplies chain tip and mempool pressure data.
type MempoolProvider interface {
	FetchTipHeight(ctx context.Context) (int64, error)
	FetchLoad(ctx context.Context) (*provider.MempoolLoad, error)
	FetchFees(ctx context.Context) (*provider.RecommendedFees, error)
}

// ChainHealthProvider supplies longer-horizon network statistics.
type ChainHealthProvider interface {
	FetchChainHealth(ctx context.Context) (*domain.ChainHealth, error)
	FetchBlockCount(ctx context.Context) (int64, error)
}

// SnapshotStore persists the daily snapshot history.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, s domain.PulseSnapshot) error
	RecentSnapshots(ctx context.Context, limit int) ([]domain.PulseSnapshot, error)
}

// ReportWriter renders the daily report from assembled data.
type ReportWriter interface {
	WriteReport(ctx context.Context, data domain.ReportData, now time.Time) (string, bool)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// PulseService assembles the market snapshot from its providers and serves
// the summary and report built on top of it. Each data section degrades
// independently: a provider failure clears that section's flag and the rest
// of the snapshot still ships.
type PulseService struct {
	tracer    trace.Tracer
	market    MarketProvider
	sentiment SentimentProvider
	mempool   MempoolProvider
	chain     ChainHealthProvider
	store     SnapshotStore
	writer    ReportWriter
	redis     RedisClient
	now       func() time.Time
}

func NewPulseService(
	tracer trace.Tracer,
	market MarketProvider,
	sentiment SentimentProvider,
	mempool MempoolProvider,
	chain ChainHealthProvider,
	store SnapshotStore,
	writer ReportWriter,
	redisClient RedisClient,
) *PulseService {
	return &PulseService{
		tracer:    tracer,
		market:    market,
		sentiment: sentiment,
		mempool:   mempool,
		chain:     chain,
		store:     store,
		writer:    writer,
		redis:     redisClient,
		now:       time.Now,
	}
}

// GetSnapshot returns the current snapshot, preferring the Redis copy and
// assembling a fresh one on a cache miss.
func (s *PulseService) GetSnapshot(ctx context.Context) (domain.PulseSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "pulse-service.get-snapshot")
	defer span.End()

	if s.redis != nil {
		cached, err := s.getSnapshotCache(ctx)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return *cached, nil
		}
	}
	return s.RefreshSnapshot(ctx)
}

// GetSummary renders the plain-English summary for the current snapshot.
func (s *PulseService) GetSummary(ctx context.Context) (string, domain.PulseSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "pulse-service.get-summary")
	defer span.End()

	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return "", snapshot, err
	}
	return pulse.ComposeSummary(snapshot), snapshot, nil
}

// GetHistory returns up to limit persisted daily snapshots, newest first.
// Out-of-range limits clamp to the default window.
func (s *PulseService) GetHistory(ctx context.Context, limit int) ([]domain.PulseSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "pulse-service.get-history")
	defer span.End()

	if s.store == nil {
		return nil, ErrNoHistory
	}
	if limit <= 0 || limit > maxHistoryDays {
		limit = defaultHistoryDays
	}
	return s.store.RecentSnapshots(ctx, limit)
}

// GetReport assembles a full day's data and renders the markdown report.
func (s *PulseService) GetReport(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "pulse-service.get-report")
	defer span.End()

	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return "", err
	}

	data := domain.ReportData{Snapshot: snapshot}

	if r30, err := s.market.FetchMarketRange(ctx, 30); err != nil {
		log.Printf("market range unavailable: %v", err)
	} else {
		data.Range30d = *r30
		data.HasRanges = true
	}
	if r7, err := s.market.FetchMarketRange(ctx, 7); err == nil {
		data.Range7d = *r7
	}

	if history, err := s.sentiment.FetchHistory(ctx, 7); err != nil {
		log.Printf("sentiment history unavailable: %v", err)
	} else {
		for _, p := range history {
			data.History = append(data.History, domain.SentimentPoint{
				Value:          p.Value,
				Classification: p.Classification,
				Label:          domain.SentimentLabelFromValue(p.Value),
				Date:           p.Timestamp,
			})
		}
	}

	if health, err := s.chain.FetchChainHealth(ctx); err != nil {
		log.Printf("chain health unavailable: %v", err)
	} else {
		data.Chain = *health
		data.HasChain = true
	}

	report, _ := s.writer.WriteReport(ctx, data, s.now())
	return report, nil
}

// RefreshSnapshot assembles a snapshot from all providers, caches it, and
// persists the daily history row. It fails only when every section fails.
func (s *PulseService) RefreshSnapshot(ctx context.Context) (domain.PulseSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "pulse-service.refresh-snapshot")
	defer span.End()

	snapshot := domain.PulseSnapshot{FetchedAt: s.now().UTC()}
	s.fillMarket(ctx, &snapshot)
	s.fillSentiment(ctx, &snapshot)
	s.fillChain(ctx, &snapshot)

	if !snapshot.HasPrice && !snapshot.HasSentiment && !snapshot.HasChain {
		return snapshot, ErrAllProvidersDown
	}

	if s.redis != nil {
		if err := s.setSnapshotCache(ctx, snapshot); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.UpsertSnapshot(ctx, snapshot); err != nil {
			log.Printf("snapshot persist error: %v", err)
		}
	}
	return snapshot, nil
}

func (s *PulseService) fillMarket(ctx context.Context, snapshot *domain.PulseSnapshot) {
	market, err := s.market.FetchBitcoin(ctx)
	if err != nil {
		log.Printf("market data unavailable: %v", err)
		return
	}
	snapshot.PriceUSD = market.PriceUSD
	snapshot.PriceChangePct = market.Change24hPct
	snapshot.Change7dPct = market.Change7dPct
	snapshot.Change30dPct = market.Change30dPct
	snapshot.MarketCapUSD = market.MarketCapUSD
	snapshot.Volume24hUSD = market.Volume24hUSD
	snapshot.ATHUSD = market.ATHUSD
	snapshot.ATHChangePct = market.ATHChangePct
	snapshot.CirculatingBTC = market.CirculatingSupply
	snapshot.TotalSupplyBTC = market.TotalSupply
	snapshot.HasPrice = true
}

func (s *PulseService) fillSentiment(ctx context.Context, snapshot *domain.PulseSnapshot) {
	point, err := s.sentiment.FetchLatest(ctx)
	if err != nil {
		log.Printf("sentiment unavailable: %v", err)
		return
	}
	snapshot.SentimentValue = point.Value
	snapshot.SentimentLabel = domain.SentimentLabelFromValue(point.Value)
	snapshot.HasSentiment = true
}

func (s *PulseService) fillChain(ctx context.Context, snapshot *domain.PulseSnapshot) {
	height, err := s.mempool.FetchTipHeight(ctx)
	if err != nil {
		log.Printf("tip height unavailable via mempool: %v", err)
		height, err = s.chain.FetchBlockCount(ctx)
		if err != nil {
			log.Printf("tip height unavailable via blockchain.info: %v", err)
			return
		}
	}

	halving := domain.HalvingAt(height, s.now())
	snapshot.BlockHeight = height
	snapshot.BlockRewardBTC = halving.RewardBTC
	snapshot.BlocksToHalving = halving.BlocksRemaining
	snapshot.DaysToHalving = halving.DaysRemaining
	snapshot.HalvingEstimate = halving.EstimatedAt
	snapshot.NetworkActivity = domain.ActivitySteady
	snapshot.HasChain = true

	load, err := s.mempool.FetchLoad(ctx)
	if err != nil {
		log.Printf("mempool load unavailable: %v", err)
	} else {
		snapshot.NetworkActivity = domain.ClassifyNetworkActivity(load.TxCount, load.VBytesPerSecond)
		snapshot.MempoolTxCount = load.TxCount
	}

	fees, err := s.mempool.FetchFees(ctx)
	if err != nil {
		log.Printf("fees unavailable: %v", err)
	} else {
		snapshot.FeeFastest = fees.Fastest
	}
}

func (s *PulseService) setSnapshotCache(ctx context.Context, snapshot domain.PulseSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err()
}

func (s *PulseService) getSnapshotCache(ctx context.Context) (*domain.PulseSnapshot, error) {
	data, err := s.redis.Get(ctx, snapshotCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.PulseSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
