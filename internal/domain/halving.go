package domain

import (
	"math"
	"time"
)

const (
	// BlocksPerHalving is the subsidy epoch length.
	BlocksPerHalving = 210_000
	// InitialBlockRewardBTC is the epoch-zero subsidy.
	InitialBlockRewardBTC = 50.0
	// TargetBlockInterval is the average spacing used for halving estimates.
	TargetBlockInterval = 10 * time.Minute
)

// Halving describes where the chain sits inside the current subsidy epoch.
type Halving struct {
	Height          int64     `json:"height"`
	Epoch           int64     `json:"epoch"`
	RewardBTC       float64   `json:"reward_btc"`
	BlocksRemaining int64     `json:"blocks_remaining"`
	DaysRemaining   int       `json:"days_remaining"`
	EstimatedAt     time.Time `json:"estimated_at"`
}

// HalvingAt computes the halving countdown for a block height, estimating
// the halving date from the target 10-minute block interval relative to now.
func HalvingAt(height int64, now time.Time) Halving {
	if height < 0 {
		height = 0
	}
	epoch := height / BlocksPerHalving
	reward := InitialBlockRewardBTC / math.Pow(2, float64(epoch))
	remaining := (epoch+1)*BlocksPerHalving - height

	eta := now.UTC().Add(time.Duration(remaining) * TargetBlockInterval)
	days := int(math.Ceil(eta.Sub(now.UTC()).Hours() / 24))
	if days < 0 {
		days = 0
	}

	return Halving{
		Height:          height,
		Epoch:           epoch,
		RewardBTC:       reward,
		BlocksRemaining: remaining,
		DaysRemaining:   days,
		EstimatedAt:     eta,
	}
}
