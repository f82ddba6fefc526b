package narrative

import (
	"fmt"
	"strings"
	"time"

	"bitcoin-pulse/internal/domain"
)

const reportSystemPrompt = `You are a market reporter writing a daily Bitcoin status report.

Rules:
- Report what the data shows. Never predict prices, recommend trades, or give financial advice.
- Never fabricate numbers. Every figure in the report must come from the data you are given. If a section's data is missing, say it is unavailable.
- Write in plain English for a general audience. Explain jargon the first time it appears.
- Use markdown with these sections: Price Action, Volume & Liquidity, Market Sentiment, On-Chain Health, Halving Watch.
- Title the report "# Bitcoin Market Report - <date>".
- Keep it under 600 words.`

// BuildReportPrompt serializes one day's data into the user message sent to
// the model. Missing sections are declared missing so the model does not fill
// gaps on its own.
func BuildReportPrompt(data domain.ReportData, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Report date: %s\n\n", now.UTC().Format("January 2, 2006"))

	s := data.Snapshot
	if s.HasPrice {
		sb.WriteString("Market data:\n")
		fmt.Fprintf(&sb, "  price: $%.2f\n", s.PriceUSD)
		fmt.Fprintf(&sb, "  change 24h/7d/30d: %+.2f%% / %+.2f%% / %+.2f%%\n", s.PriceChangePct, s.Change7dPct, s.Change30dPct)
		fmt.Fprintf(&sb, "  market cap: $%.0f\n", s.MarketCapUSD)
		fmt.Fprintf(&sb, "  volume 24h: $%.0f\n", s.Volume24hUSD)
		if s.ATHUSD > 0 {
			fmt.Fprintf(&sb, "  all-time high: $%.2f (%+.2f%% from current)\n", s.ATHUSD, s.ATHChangePct)
		}
	} else {
		sb.WriteString("Market data: unavailable\n")
	}

	if data.HasRanges {
		fmt.Fprintf(&sb, "\n30-day range: high $%.2f, low $%.2f, avg daily volume $%.0f\n",
			data.Range30d.PriceHigh, data.Range30d.PriceLow, data.Range30d.AvgVolume)
	}

	if s.HasSentiment {
		fmt.Fprintf(&sb, "\nFear & Greed Index: %d (%s)\n", s.SentimentValue, s.SentimentLabel.Display())
		if len(data.History) > 0 {
			sb.WriteString("Recent readings:\n")
			for i, p := range data.History {
				if i >= 7 {
					break
				}
				fmt.Fprintf(&sb, "  %s: %d (%s)\n", p.Date.Format("2006-01-02"), p.Value, p.Classification)
			}
		}
	} else {
		sb.WriteString("\nFear & Greed Index: unavailable\n")
	}

	if data.HasChain {
		c := data.Chain
		sb.WriteString("\nOn-chain data:\n")
		fmt.Fprintf(&sb, "  hash rate: %.0f TH/s (30-day avg %.0f)\n", c.HashRateCurrent, c.HashRate30dAvg)
		fmt.Fprintf(&sb, "  daily transactions: %.0f (30-day avg %.0f)\n", c.TxCountCurrent, c.TxCount30dAvg)
		fmt.Fprintf(&sb, "  difficulty: %.0f (%+.2f%% over 30 days)\n", c.DifficultyCurrent, c.Difficulty30dDelta)
	} else {
		sb.WriteString("\nOn-chain data: unavailable\n")
	}

	if s.HasChain {
		sb.WriteString("\nHalving data:\n")
		fmt.Fprintf(&sb, "  block height: %d, reward: %.3f BTC\n", s.BlockHeight, s.BlockRewardBTC)
		fmt.Fprintf(&sb, "  blocks to halving: %d, estimated %s (%d days)\n",
			s.BlocksToHalving, s.HalvingEstimate.Format("2006-01-02"), s.DaysToHalving)
		fmt.Fprintf(&sb, "  network activity: %s, mempool: %.0f txs, fastest fee %.0f sat/vB\n",
			s.NetworkActivity, s.MempoolTxCount, s.FeeFastest)
	} else {
		sb.WriteString("\nHalving data: unavailable\n")
	}

	return sb.String()
}
