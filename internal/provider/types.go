package provider

import (
	"math"
	"time"
)

// BitcoinMarket is the raw market view fetched from CoinGecko.
type BitcoinMarket struct {
	PriceUSD          float64
	Change24hPct      float64
	Change7dPct       float64
	Change30dPct      float64
	MarketCapUSD      float64
	Volume24hUSD      float64
	ATHUSD            float64
	ATHChangePct      float64
	CirculatingSupply float64
	TotalSupply       float64
	LastUpdated       time.Time
}

// FearGreedPoint is one reading of the alternative.me Fear & Greed index.
type FearGreedPoint struct {
	Value            int
	Classification   string
	Timestamp        time.Time
	TimeUntilUpdateS int
}

// MempoolLoad summarizes current mempool pressure.
type MempoolLoad struct {
	TxCount         float64
	VBytesPerSecond float64
}

// RecommendedFees are mempool.space fee estimates in sat/vB.
type RecommendedFees struct {
	Fastest  float64
	HalfHour float64
	Hour     float64
	Economy  float64
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
