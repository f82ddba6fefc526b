package pulse

import (
	"strings"
	"testing"
	"time"

	"bitcoin-pulse/internal/domain"
)

func reportDataFixture() domain.ReportData {
	s := snapshotAllAvailable()
	s.PriceUSD = 67890.12
	s.Change7dPct = 4.2
	s.Change30dPct = -1.1
	s.MarketCapUSD = 1.34e12
	s.Volume24hUSD = 28.5e9
	s.ATHUSD = 73750
	s.ATHChangePct = -7.9
	s.CirculatingBTC = 19_900_000
	s.TotalSupplyBTC = 19_900_000
	s.BlockHeight = 840123
	s.BlockRewardBTC = 3.125
	s.BlocksToHalving = 209877
	s.DaysToHalving = 1457
	s.HalvingEstimate = time.Date(2028, 4, 10, 0, 0, 0, 0, time.UTC)
	s.MempoolTxCount = 85000
	s.FeeFastest = 22

	return domain.ReportData{
		Snapshot:  s,
		HasRanges: true,
		Range30d: domain.MarketRange{
			PriceHigh: 71000,
			PriceLow:  61000,
			AvgVolume: 25e9,
		},
		HasChain: true,
		Chain: domain.ChainHealth{
			HashRateCurrent:    620_000_000,
			HashRate30dAvg:     600_000_000,
			TxCountCurrent:     450_000,
			TxCount30dAvg:      430_000,
			DifficultyCurrent:  86.4e12,
			Difficulty30dDelta: 3.2,
		},
		History: []domain.SentimentPoint{
			{Date: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), Value: 50, Classification: "Neutral"},
			{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Value: 62, Classification: "Greed"},
		},
	}
}

func TestComposeReportSections(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	out := ComposeReport(reportDataFixture(), now)

	if !strings.HasPrefix(out, "# Bitcoin Market Report - August 29, 2026\n") {
		t.Errorf("report title wrong:\n%s", out[:80])
	}
	for _, section := range []string{
		"## Price Action",
		"## Volume & Liquidity",
		"## Market Sentiment",
		"## On-Chain Health",
		"## Halving Watch",
	} {
		if !strings.Contains(out, section) {
			t.Errorf("report missing section %q", section)
		}
	}
	if !strings.Contains(out, "Generated at 14:30 UTC") {
		t.Error("report missing generation timestamp")
	}
}

func TestComposeReportContent(t *testing.T) {
	t.Parallel()

	out := ComposeReport(reportDataFixture(), time.Now())

	checks := []string{
		"$67,890",
		"modest gains",
		"+1.80%",
		"The Fear & Greed Index reads **50**",
		"2026-08-28: 62 (Greed)",
		"block **840123**",
		"3.125 BTC",
		"above the recent average",
		"One dollar buys **1,473 sats**",
		"**94.76%** of the 21,000,000 BTC hard cap has been mined",
		"19,900,000 BTC in circulation",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestComposeReportDegradation(t *testing.T) {
	t.Parallel()

	out := ComposeReport(domain.ReportData{}, time.Now())
	for _, want := range []string{
		"Price data is currently unavailable.",
		"Volume data is currently unavailable.",
		"Sentiment data is currently unavailable.",
		"On-chain data is currently unavailable.",
		"Block data is currently unavailable.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("empty report missing %q", want)
		}
	}
}

func TestComposeReportDeterministic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	data := reportDataFixture()
	first := ComposeReport(data, now)
	if got := ComposeReport(data, now); got != first {
		t.Error("report output changed between identical calls")
	}
}

func TestPriceAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		change float64
		want   string
	}{
		{5, "strong upward movement"},
		{1.2, "modest gains"},
		{-1.5, "a slight decline"},
		{-8, "notable selling pressure"},
	}
	for _, tt := range tests {
		if got := priceAction(tt.change); got != tt.want {
			t.Errorf("priceAction(%v) = %q, want %q", tt.change, got, tt.want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{1.34e12, "$1.34T"},
		{28.5e9, "$28.50B"},
		{3.2e6, "$3.20M"},
		{4500, "$4.50K"},
		{42.5, "$42.50"},
	}
	for _, tt := range tests {
		if got := formatUSD(tt.in); got != tt.want {
			t.Errorf("formatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatThousands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{67890.12, "67,890"},
		{1234567, "1,234,567"},
		{999, "999"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatThousands(tt.in); got != tt.want {
			t.Errorf("formatThousands(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
