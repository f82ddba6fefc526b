package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// MempoolProvider fetches block and mempool data from a mempool.space
// compatible API.
type MempoolProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewMempoolProvider(tracer trace.Tracer, baseURL string) *MempoolProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://mempool.space"
	}
	return &MempoolProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// FetchTipHeight returns the current best block height.
func (p *MempoolProvider) FetchTipHeight(ctx context.Context) (int64, error) {
	_, span := p.tracer.Start(ctx, "mempool.fetch-tip-height")
	defer span.End()

	body, err := p.get(ctx, "/api/blocks/tip/height")
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tip height: %w", err)
	}
	return height, nil
}

// FetchLoad returns 24h mempool pressure (tx count and throughput) used for
// the network-activity classification.
func (p *MempoolProvider) FetchLoad(ctx context.Context) (*MempoolLoad, error) {
	_, span := p.tracer.Start(ctx, "mempool.fetch-load")
	defer span.End()

	body, err := p.get(ctx, "/api/v1/statistics/24h")
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Count           float64 `json:"count"`
		VBytesPerSecond float64 `json:"vbytes_per_second"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode mempool statistics: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("mempool statistics payload has no rows")
	}

	r := rows[0]
	return &MempoolLoad{
		TxCount:         clamp(r.Count, 0, 10_000_000),
		VBytesPerSecond: clamp(r.VBytesPerSecond, 0, 1_000_000),
	}, nil
}

// FetchFees returns recommended fee rates.
func (p *MempoolProvider) FetchFees(ctx context.Context) (*RecommendedFees, error) {
	_, span := p.tracer.Start(ctx, "mempool.fetch-fees")
	defer span.End()

	body, err := p.get(ctx, "/api/v1/fees/recommended")
	if err != nil {
		return nil, err
	}

	var raw struct {
		FastestFee  float64 `json:"fastestFee"`
		HalfHourFee float64 `json:"halfHourFee"`
		HourFee     float64 `json:"hourFee"`
		EconomyFee  float64 `json:"economyFee"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode recommended fees: %w", err)
	}

	return &RecommendedFees{
		Fastest:  raw.FastestFee,
		HalfHour: raw.HalfHourFee,
		Hour:     raw.HourFee,
		Economy:  raw.EconomyFee,
	}, nil
}

func (p *MempoolProvider) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
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
		return nil, fmt.Errorf("mempool API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
