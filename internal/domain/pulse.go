package domain

import "time"

// SentimentLabel is the coarse mood bucket derived from the Fear & Greed index.
type SentimentLabel string

const (
	SentimentExtremeFear  SentimentLabel = "extreme_fear"
	SentimentFearful      SentimentLabel = "fearful"
	SentimentNeutral      SentimentLabel = "neutral"
	SentimentGreedy       SentimentLabel = "greedy"
	SentimentExtremeGreed SentimentLabel = "extreme_greed"
)

func (l SentimentLabel) IsValid() bool {
	switch l {
	case SentimentExtremeFear, SentimentFearful, SentimentNeutral, SentimentGreedy, SentimentExtremeGreed:
		return true
	}
	return false
}

// SentimentLabelFromValue buckets a 0-100 Fear & Greed reading.
func SentimentLabelFromValue(value int) SentimentLabel {
	switch {
	case value >= 75:
		return SentimentExtremeGreed
	case value >= 55:
		return SentimentGreedy
	case value >= 45:
		return SentimentNeutral
	case value >= 25:
		return SentimentFearful
	default:
		return SentimentExtremeFear
	}
}

// Display renders a label the way the summary composer speaks it.
func (l SentimentLabel) Display() string {
	switch l {
	case SentimentExtremeFear:
		return "extremely fearful"
	case SentimentFearful:
		return "fearful"
	case SentimentGreedy:
		return "greedy"
	case SentimentExtremeGreed:
		return "extremely greedy"
	default:
		return "neutral"
	}
}

// NetworkActivity classifies current on-chain load.
type NetworkActivity string

const (
	ActivityQuiet  NetworkActivity = "quiet"
	ActivitySteady NetworkActivity = "steady"
	ActivityBusy   NetworkActivity = "busy"
)

func (a NetworkActivity) IsValid() bool {
	return a == ActivityQuiet || a == ActivitySteady || a == ActivityBusy
}

// Mempool load thresholds for the activity buckets, in pending transactions
// and virtual bytes per second. Values track mempool.space 24h statistics.
const (
	quietTxCount = 40_000.0
	busyTxCount  = 150_000.0
	quietVBps    = 600.0
	busyVBps     = 2_400.0
)

// ClassifyNetworkActivity buckets mempool pressure into quiet/steady/busy.
// Either signal being hot is enough for busy; both must be cold for quiet.
func ClassifyNetworkActivity(mempoolTxCount, vbytesPerSecond float64) NetworkActivity {
	if mempoolTxCount >= busyTxCount || vbytesPerSecond >= busyVBps {
		return ActivityBusy
	}
	if mempoolTxCount < quietTxCount && vbytesPerSecond < quietVBps {
		return ActivityQuiet
	}
	return ActivitySteady
}

// PulseSnapshot is the assembled view of the Bitcoin market for one refresh.
// Fields a provider could not supply stay at their zero value with the
// matching Has* flag false; the composer substitutes neutral placeholders.
type PulseSnapshot struct {
	PriceUSD       float64 `json:"price_usd"`
	PriceChangePct float64 `json:"price_change_pct"`
	Change7dPct    float64 `json:"change_7d_pct"`
	Change30dPct   float64 `json:"change_30d_pct"`
	MarketCapUSD   float64 `json:"market_cap_usd"`
	Volume24hUSD   float64 `json:"volume_24h_usd"`
	ATHUSD         float64 `json:"ath_usd"`
	ATHChangePct   float64 `json:"ath_change_pct"`
	CirculatingBTC float64 `json:"circulating_btc"`
	TotalSupplyBTC float64 `json:"total_supply_btc"`
	HasPrice       bool    `json:"has_price"`

	SentimentValue int            `json:"sentiment_value"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	HasSentiment   bool           `json:"has_sentiment"`

	BlockHeight     int64           `json:"block_height"`
	BlockRewardBTC  float64         `json:"block_reward_btc"`
	BlocksToHalving int64           `json:"blocks_to_halving"`
	DaysToHalving   int             `json:"days_to_halving"`
	HalvingEstimate time.Time       `json:"halving_estimate"`
	NetworkActivity NetworkActivity `json:"network_activity"`
	MempoolTxCount  float64         `json:"mempool_tx_count"`
	FeeFastest      float64         `json:"fee_fastest"`
	HasChain        bool            `json:"has_chain"`

	FetchedAt time.Time `json:"fetched_at"`
}

// SentimentPoint is one day of Fear & Greed history.
type SentimentPoint struct {
	Value          int            `json:"value"`
	Classification string         `json:"classification"`
	Label          SentimentLabel `json:"label"`
	Date           time.Time      `json:"date"`
}

// MarketRange summarizes a price-history window.
type MarketRange struct {
	Days       int     `json:"days"`
	PriceHigh  float64 `json:"price_high"`
	PriceLow   float64 `json:"price_low"`
	PriceStart float64 `json:"price_start"`
	PriceEnd   float64 `json:"price_end"`
	AvgVolume  float64 `json:"avg_volume"`
}

// ChainHealth carries the blockchain.info chart aggregates used by the report.
type ChainHealth struct {
	HashRateCurrent    float64 `json:"hash_rate_current"`
	HashRate30dAvg     float64 `json:"hash_rate_30d_avg"`
	TxCountCurrent     float64 `json:"tx_count_current"`
	TxCount30dAvg      float64 `json:"tx_count_30d_avg"`
	DifficultyCurrent  float64 `json:"difficulty_current"`
	Difficulty30dDelta float64 `json:"difficulty_30d_delta"`
}

// ReportData bundles everything the daily report composer consumes.
type ReportData struct {
	Snapshot  PulseSnapshot
	Range30d  MarketRange
	Range7d   MarketRange
	History   []SentimentPoint
	Chain     ChainHealth
	HasChain  bool
	HasRanges bool
}
