// Command mcp serves the pulse snapshot, summary, and poll results as MCP
// tools over stdio for agent clients.
package main

import (
	"context"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"

	"bitcoin-pulse/internal/cache"
	"bitcoin-pulse/internal/config"
	"bitcoin-pulse/internal/db"
	"bitcoin-pulse/internal/mcpserver"
	"bitcoin-pulse/internal/narrative"
	"bitcoin-pulse/internal/provider"
	"bitcoin-pulse/internal/repository"
	"bitcoin-pulse/internal/service"
	"bitcoin-pulse/pkg/tracing"

	"github.com/joho/godotenv"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	runServerFunc    = func(ctx context.Context, srv *mcpserver.Server) error { return srv.Run(ctx) }
	exitFunc         = os.Exit
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	// Logs go to stderr so stdout stays clean for the MCP transport.
	log.SetOutput(os.Stderr)

	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("postgres unavailable, poll history disabled: %v", err)
	}
	os.Setenv("REDIS_URL", cfg.RedisURL)
	if err := initRedisFunc(ctx); err != nil {
		log.Printf("redis unavailable, caching disabled: %v", err)
	}

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

	var snapshotStore service.SnapshotStore
	var pollStore service.PollStore
	if db.Pool != nil {
		snapshotStore = repository.NewPulseRepository(db.Pool, tracer)
		pollStore = repository.NewPollRepository(db.Pool, tracer)
	}

	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	market := provider.NewCoinGeckoProvider(tracer)
	sentiment := provider.NewFearGreedProvider(tracer)
	mempool := provider.NewMempoolProvider(tracer, cfg.MempoolBaseURL)
	chain := provider.NewBlockchainInfoProvider(tracer, cfg.BlockchainInfoBaseURL)

	var llm narrative.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = narrative.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	writer := narrative.NewWriter(tracer, llm, cfg.OpenAIModel)

	pulseService := service.NewPulseService(tracer, market, sentiment, mempool, chain, snapshotStore, writer, redisClient)
	pollService := service.NewPollService(tracer, pollStore, redisClient)

	srv := mcpserver.New(pulseService, pollService)

	log.Println("MCP server serving on stdio")
	if err := runServerFunc(ctx, srv); err != nil && ctx.Err() == nil {
		log.Printf("MCP server stopped: %v", err)
		exitFunc(1)
		return
	}
	log.Println("MCP server exited")
}
