// Package pulse composes the daily plain-English market summary and the
// longer narrative report. Output is deterministic: the same snapshot always
// produces the same text, and no template contains predictive or advisory
// language.
package pulse

import (
	"fmt"
	"math"
	"strings"

	"bitcoin-pulse/internal/domain"
)

// flatThresholdPct is the 24h change magnitude below which the price
// sentence calls the day flat.
const flatThresholdPct = 0.25

// Placeholder sentences for missing inputs.
const (
	placeholderSummary   = "Bitcoin market data is currently unavailable."
	placeholderPrice     = "Bitcoin price data is currently unavailable."
	placeholderSentiment = "Sentiment data is currently unavailable."
)

// ComposeSummary renders the fixed-template daily summary for a snapshot.
// Missing inputs degrade to neutral placeholder sentences; a snapshot with
// nothing available degrades to a single placeholder.
func ComposeSummary(s domain.PulseSnapshot) string {
	if !s.HasPrice && !s.HasSentiment && !s.HasChain {
		return placeholderSummary
	}

	parts := make([]string, 0, 4)
	parts = append(parts, priceSentence(s))
	parts = append(parts, sentimentSentence(s))
	if s.HasChain {
		parts = append(parts, halvingSentence(s.DaysToHalving))
		parts = append(parts, activitySentence(s.NetworkActivity))
	}
	return strings.Join(parts, " ")
}

func priceSentence(s domain.PulseSnapshot) string {
	if !s.HasPrice {
		return placeholderPrice
	}
	change := s.PriceChangePct
	switch {
	case change >= flatThresholdPct:
		return fmt.Sprintf("Bitcoin is up %s%% today.", formatPct(change))
	case change <= -flatThresholdPct:
		return fmt.Sprintf("Bitcoin is down %s%% today.", formatPct(-change))
	default:
		return "Bitcoin is little changed today."
	}
}

func sentimentSentence(s domain.PulseSnapshot) string {
	if !s.HasSentiment {
		return placeholderSentiment
	}
	label := s.SentimentLabel
	if !label.IsValid() {
		label = domain.SentimentNeutral
	}
	if label == domain.SentimentNeutral {
		return "Sentiment remains neutral."
	}
	return fmt.Sprintf("Sentiment is %s.", label.Display())
}

func halvingSentence(days int) string {
	switch {
	case days <= 0:
		return "The halving is expected within a day."
	case days == 1:
		return "1 day remains until the halving."
	default:
		return fmt.Sprintf("%d days remain until the halving.", days)
	}
}

func activitySentence(a domain.NetworkActivity) string {
	if !a.IsValid() {
		a = domain.ActivitySteady
	}
	return fmt.Sprintf("Network activity is %s.", a)
}

// formatPct renders a percentage magnitude with one decimal, dropping a
// trailing zero ("1.8", "12", "0.3").
func formatPct(v float64) string {
	v = math.Abs(v)
	out := fmt.Sprintf("%.1f", v)
	out = strings.TrimSuffix(out, ".0")
	return out
}
