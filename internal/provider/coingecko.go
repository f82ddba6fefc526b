package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitcoin-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches Bitcoin market data from the CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// The free tier allows roughly 10-30 calls per minute; one token every
// 7.5 seconds keeps us comfortably under it.
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchBitcoin fetches the current Bitcoin market snapshot.
func (p *CoinGeckoProvider) FetchBitcoin(ctx context.Context) (*BitcoinMarket, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-bitcoin")
	defer span.End()

	url := p.baseURL + "/coins/bitcoin?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false"

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch bitcoin: %w", err)
	}

	var raw struct {
		MarketData struct {
			CurrentPrice       map[string]float64 `json:"current_price"`
			MarketCap          map[string]float64 `json:"market_cap"`
			TotalVolume        map[string]float64 `json:"total_volume"`
			Change24h          float64            `json:"price_change_percentage_24h"`
			Change7d           float64            `json:"price_change_percentage_7d"`
			Change30d          float64            `json:"price_change_percentage_30d"`
			ATH                map[string]float64 `json:"ath"`
			ATHChangePct       map[string]float64 `json:"ath_change_percentage"`
			CirculatingSupply  float64            `json:"circulating_supply"`
			TotalSupply        float64            `json:"total_supply"`
		} `json:"market_data"`
		LastUpdated time.Time `json:"last_updated"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse bitcoin data: %w", err)
	}

	md := raw.MarketData
	return &BitcoinMarket{
		PriceUSD:          md.CurrentPrice["usd"],
		Change24hPct:      md.Change24h,
		Change7dPct:       md.Change7d,
		Change30dPct:      md.Change30d,
		MarketCapUSD:      md.MarketCap["usd"],
		Volume24hUSD:      md.TotalVolume["usd"],
		ATHUSD:            md.ATH["usd"],
		ATHChangePct:      md.ATHChangePct["usd"],
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		LastUpdated:       raw.LastUpdated,
	}, nil
}

// FetchMarketRange fetches market_chart data for the given window and
// reduces it to high/low/start/end price and average daily volume.
func (p *CoinGeckoProvider) FetchMarketRange(ctx context.Context, days int) (*domain.MarketRange, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-market-range")
	defer span.End()

	url := fmt.Sprintf("%s/coins/bitcoin/market_chart?vs_currency=usd&days=%d", p.baseURL, days)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch market range (%dd): %w", days, err)
	}

	var raw struct {
		Prices       [][]float64 `json:"prices"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse market range (%dd): %w", days, err)
	}
	if len(raw.Prices) == 0 {
		return nil, fmt.Errorf("market range (%dd) has no price points", days)
	}

	r := &domain.MarketRange{Days: days}
	for i, pt := range raw.Prices {
		if len(pt) < 2 {
			continue
		}
		price := pt[1]
		if i == 0 || price > r.PriceHigh {
			r.PriceHigh = price
		}
		if i == 0 || price < r.PriceLow {
			r.PriceLow = price
		}
		if r.PriceStart == 0 {
			r.PriceStart = price
		}
		r.PriceEnd = price
	}

	var volSum float64
	var volN int
	for _, pt := range raw.TotalVolumes {
		if len(pt) < 2 {
			continue
		}
		volSum += pt[1]
		volN++
	}
	if volN > 0 {
		r.AvgVolume = volSum / float64(volN)
	}

	return r, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
