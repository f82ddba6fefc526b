// Command report generates the daily Bitcoin market report and writes it to
// the reports directory as btc-report-YYYY-MM-DD.md.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"bitcoin-pulse/internal/config"
	"bitcoin-pulse/internal/narrative"
	"bitcoin-pulse/internal/provider"
	"bitcoin-pulse/internal/service"
	"bitcoin-pulse/pkg/tracing"

	"github.com/joho/godotenv"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	nowFunc        = time.Now
	mkdirAllFunc   = os.MkdirAll
	writeFileFunc  = os.WriteFile
	exitFunc       = os.Exit
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Printf("failed to initialize tracer: %v", err)
		exitFunc(1)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	market := provider.NewCoinGeckoProvider(tracer)
	sentiment := provider.NewFearGreedProvider(tracer)
	mempool := provider.NewMempoolProvider(tracer, cfg.MempoolBaseURL)
	chain := provider.NewBlockchainInfoProvider(tracer, cfg.BlockchainInfoBaseURL)

	var llm narrative.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = narrative.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	writer := narrative.NewWriter(tracer, llm, cfg.OpenAIModel)

	pulseService := service.NewPulseService(tracer, market, sentiment, mempool, chain, nil, writer, nil)

	path, err := generateReport(ctx, pulseService, cfg.ReportsDir)
	if err != nil {
		log.Printf("report generation failed: %v", err)
		exitFunc(1)
		return
	}
	log.Printf("report written to %s", path)
}

// ReportSource is the slice of the pulse service the generator needs.
type ReportSource interface {
	GetReport(ctx context.Context) (string, error)
}

func generateReport(ctx context.Context, src ReportSource, dir string) (string, error) {
	report, err := src.GetReport(ctx)
	if err != nil {
		return "", err
	}

	if err := mkdirAllFunc(dir, 0o755); err != nil {
		return "", err
	}

	name := "btc-report-" + nowFunc().UTC().Format("2006-01-02") + ".md"
	path := filepath.Join(dir, name)
	if err := writeFileFunc(path, []byte(report), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
