package pulse

import (
	"fmt"
	"math"
	"strings"
	"time"

	"bitcoin-pulse/internal/domain"
)

// ComposeReport renders the daily markdown report from templates. Like the
// summary, the output is deterministic and stays descriptive: it reports
// what the data shows and never forecasts.
func ComposeReport(data domain.ReportData, now time.Time) string {
	var sb strings.Builder

	now = now.UTC()
	fmt.Fprintf(&sb, "# Bitcoin Market Report - %s\n\n", now.Format("January 2, 2006"))
	fmt.Fprintf(&sb, "> Generated at %s UTC | Data sources: CoinGecko, Alternative.me, Blockchain.com, mempool.space\n\n", now.Format("15:04"))
	sb.WriteString("---\n\n")

	writePriceSection(&sb, data)
	writeVolumeSection(&sb, data)
	writeSentimentSection(&sb, data)
	writeChainSection(&sb, data)
	writeHalvingSection(&sb, data.Snapshot)

	sb.WriteString("---\n\n")
	sb.WriteString("*Report generated by The Bitcoin Pulse (template engine)*\n")
	return sb.String()
}

func writePriceSection(sb *strings.Builder, data domain.ReportData) {
	sb.WriteString("## Price Action\n\n")

	s := data.Snapshot
	if !s.HasPrice {
		sb.WriteString("Price data is currently unavailable.\n\n")
		return
	}

	fmt.Fprintf(sb, "Bitcoin is trading at **$%s**, showing %s with a **%+.2f%%** change over the past 24 hours. ",
		formatThousands(s.PriceUSD), priceAction(s.PriceChangePct), s.PriceChangePct)
	fmt.Fprintf(sb, "The 7-day move is **%+.2f%%** and the 30-day move is **%+.2f%%**.\n\n",
		s.Change7dPct, s.Change30dPct)

	if data.HasRanges && data.Range30d.PriceHigh > 0 {
		fmt.Fprintf(sb, "The price sits %s, with the 30-day high at $%s and the low at $%s. ",
			rangeContext(s.PriceUSD, data.Range30d), formatThousands(data.Range30d.PriceHigh), formatThousands(data.Range30d.PriceLow))
	}
	if s.ATHUSD > 0 {
		fmt.Fprintf(sb, "Bitcoin stands **%.1f%%** below its all-time high of $%s.",
			math.Abs(s.ATHChangePct), formatThousands(s.ATHUSD))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "One dollar buys **%s sats**", formatThousands(satsPerDollar(s.PriceUSD)))
	if s.CirculatingBTC > 0 {
		fmt.Fprintf(sb, ", and **%.2f%%** of the %s BTC hard cap has been mined (%s BTC in circulation)",
			percentMined(s.CirculatingBTC), formatThousands(maxSupplyBTC), formatThousands(s.CirculatingBTC))
	}
	sb.WriteString(".\n\n")
}

// maxSupplyBTC is the protocol hard cap.
const maxSupplyBTC = 21_000_000

func satsPerDollar(priceUSD float64) float64 {
	if priceUSD <= 0 {
		return 0
	}
	return math.Round(1e8 / priceUSD)
}

func percentMined(circulating float64) float64 {
	return circulating / maxSupplyBTC * 100
}

func writeVolumeSection(sb *strings.Builder, data domain.ReportData) {
	sb.WriteString("## Volume & Liquidity\n\n")

	s := data.Snapshot
	if !s.HasPrice {
		sb.WriteString("Volume data is currently unavailable.\n\n")
		return
	}

	fmt.Fprintf(sb, "Trading volume over the past 24 hours reached **%s**", formatUSD(s.Volume24hUSD))
	if data.HasRanges && data.Range30d.AvgVolume > 0 {
		ratio := s.Volume24hUSD / data.Range30d.AvgVolume
		fmt.Fprintf(sb, ", which is %s. The 30-day average daily volume is %s.",
			volumeAnalysis(ratio), formatUSD(data.Range30d.AvgVolume))
	} else {
		sb.WriteString(".")
	}
	fmt.Fprintf(sb, "\n\nMarket capitalization stands at **%s**.\n\n", formatUSD(s.MarketCapUSD))
}

func writeSentimentSection(sb *strings.Builder, data domain.ReportData) {
	sb.WriteString("## Market Sentiment\n\n")

	s := data.Snapshot
	if !s.HasSentiment {
		sb.WriteString("Sentiment data is currently unavailable.\n\n")
		return
	}

	fmt.Fprintf(sb, "The Fear & Greed Index reads **%d**, a level the index classifies as %s.\n\n",
		s.SentimentValue, s.SentimentLabel.Display())

	if len(data.History) > 0 {
		sb.WriteString("Recent readings:\n\n")
		for i, p := range data.History {
			if i >= 7 {
				break
			}
			fmt.Fprintf(sb, "- %s: %d (%s)\n", p.Date.Format("2006-01-02"), p.Value, p.Classification)
		}
		sb.WriteString("\n")
	}
}

func writeChainSection(sb *strings.Builder, data domain.ReportData) {
	sb.WriteString("## On-Chain Health\n\n")

	if !data.HasChain {
		sb.WriteString("On-chain data is currently unavailable.\n\n")
		return
	}

	c := data.Chain
	fmt.Fprintf(sb, "- **Hash Rate**: %s TH/s (30-day avg: %s TH/s) - %s\n",
		formatThousands(c.HashRateCurrent), formatThousands(c.HashRate30dAvg),
		trendWord(c.HashRateCurrent, c.HashRate30dAvg))
	fmt.Fprintf(sb, "- **Daily Transactions**: %s (30-day avg: %s)\n",
		formatThousands(c.TxCountCurrent), formatThousands(c.TxCount30dAvg))
	fmt.Fprintf(sb, "- **Network Difficulty**: %s (%+.2f%% over 30 days)\n",
		formatThousands(c.DifficultyCurrent), c.Difficulty30dDelta)

	s := data.Snapshot
	if s.HasChain {
		fmt.Fprintf(sb, "- **Network Activity**: %s (mempool holds %s pending transactions, fastest fee %.0f sat/vB)\n",
			s.NetworkActivity, formatThousands(s.MempoolTxCount), s.FeeFastest)
	}
	sb.WriteString("\n")
}

func writeHalvingSection(sb *strings.Builder, s domain.PulseSnapshot) {
	sb.WriteString("## Halving Watch\n\n")

	if !s.HasChain {
		sb.WriteString("Block data is currently unavailable.\n\n")
		return
	}

	fmt.Fprintf(sb, "The chain is at block **%d** with a block reward of **%.3f BTC**. ", s.BlockHeight, s.BlockRewardBTC)
	fmt.Fprintf(sb, "%d blocks remain until the next halving, estimated around **%s** (%d days).\n\n",
		s.BlocksToHalving, s.HalvingEstimate.Format("2006-01-02"), s.DaysToHalving)
}

func priceAction(change24h float64) string {
	switch {
	case change24h > 3:
		return "strong upward movement"
	case change24h > 0:
		return "modest gains"
	case change24h > -3:
		return "a slight decline"
	default:
		return "notable selling pressure"
	}
}

func volumeAnalysis(ratio float64) string {
	switch {
	case ratio > 1.5:
		return "well above the recent average"
	case ratio > 1.1:
		return "above the recent average"
	case ratio > 0.9:
		return "near the recent average"
	default:
		return "below the recent average"
	}
}

func rangeContext(price float64, r domain.MarketRange) string {
	if r.PriceHigh == r.PriceLow {
		return "near the middle of its 30-day range"
	}
	position := (price - r.PriceLow) / (r.PriceHigh - r.PriceLow) * 100
	switch {
	case position > 80:
		return "near the top of its 30-day range"
	case position > 60:
		return "in the upper portion of its 30-day range"
	case position > 40:
		return "near the middle of its 30-day range"
	case position > 20:
		return "in the lower portion of its 30-day range"
	default:
		return "near the bottom of its 30-day range"
	}
}

// trendWord compares a current value to its average; within 5% is stable.
func trendWord(current, avg float64) string {
	if avg == 0 {
		return "stable"
	}
	delta := math.Abs(current-avg) / avg
	if delta < 0.05 {
		return "stable"
	}
	if current > avg {
		return "increasing"
	}
	return "decreasing"
}
