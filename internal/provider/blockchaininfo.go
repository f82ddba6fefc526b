package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitcoin-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// BlockchainInfoProvider fetches on-chain chart aggregates from
// blockchain.info. It also serves as the block-height fallback when
// mempool.space is unreachable.
type BlockchainInfoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBlockchainInfoProvider(tracer trace.Tracer, baseURL string) *BlockchainInfoProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://api.blockchain.info"
	}
	return &BlockchainInfoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

type chartValue struct {
	X int64   `json:"x"`
	Y float64 `json:"y"`
}

// FetchChainHealth fetches hash rate, transaction count, and difficulty
// charts. Individual chart failures are logged and skipped; an error is
// returned only when no chart could be fetched.
func (p *BlockchainInfoProvider) FetchChainHealth(ctx context.Context) (*domain.ChainHealth, error) {
	_, span := p.tracer.Start(ctx, "blockchaininfo.fetch-chain-health")
	defer span.End()

	health := &domain.ChainHealth{}
	fetched := 0

	if values, err := p.fetchChart(ctx, "hash-rate", "30days"); err != nil {
		log.Printf("blockchain.info hash-rate chart error: %v", err)
	} else if len(values) > 0 {
		health.HashRateCurrent = values[len(values)-1].Y
		health.HashRate30dAvg = chartAvg(values)
		fetched++
	}

	if values, err := p.fetchChart(ctx, "n-transactions", "30days"); err != nil {
		log.Printf("blockchain.info n-transactions chart error: %v", err)
	} else if len(values) > 0 {
		health.TxCountCurrent = values[len(values)-1].Y
		health.TxCount30dAvg = chartAvg(values)
		fetched++
	}

	if values, err := p.fetchChart(ctx, "difficulty", "60days"); err != nil {
		log.Printf("blockchain.info difficulty chart error: %v", err)
	} else if len(values) > 0 {
		health.DifficultyCurrent = values[len(values)-1].Y
		if len(values) >= 30 {
			base := values[len(values)-30].Y
			if base != 0 {
				health.Difficulty30dDelta = (values[len(values)-1].Y - base) / base * 100
			}
		}
		fetched++
	}

	if fetched == 0 {
		return nil, fmt.Errorf("all blockchain.info charts failed")
	}
	return health, nil
}

// FetchBlockCount returns the current block height from /q/getblockcount.
func (p *BlockchainInfoProvider) FetchBlockCount(ctx context.Context) (int64, error) {
	_, span := p.tracer.Start(ctx, "blockchaininfo.fetch-block-count")
	defer span.End()

	body, err := p.get(ctx, "/q/getblockcount")
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block count: %w", err)
	}
	return height, nil
}

func (p *BlockchainInfoProvider) fetchChart(ctx context.Context, name, timespan string) ([]chartValue, error) {
	body, err := p.get(ctx, fmt.Sprintf("/charts/%s?timespan=%s&format=json", name, timespan))
	if err != nil {
		return nil, err
	}

	var raw struct {
		Values []chartValue `json:"values"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s chart: %w", name, err)
	}
	return raw.Values, nil
}

func (p *BlockchainInfoProvider) get(ctx context.Context, path string) ([]byte, error) {
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
		return nil, fmt.Errorf("blockchain.info API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

func chartAvg(values []chartValue) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v.Y
	}
	return sum / float64(len(values))
}
