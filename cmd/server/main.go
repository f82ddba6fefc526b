package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitcoin-pulse/internal/analytics"
	"bitcoin-pulse/internal/bot"
	"bitcoin-pulse/internal/cache"
	"bitcoin-pulse/internal/config"
	"bitcoin-pulse/internal/db"
	"bitcoin-pulse/internal/handler"
	"bitcoin-pulse/internal/job"
	"bitcoin-pulse/internal/narrative"
	"bitcoin-pulse/internal/provider"
	"bitcoin-pulse/internal/repository"
	"bitcoin-pulse/internal/service"
	"bitcoin-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "bitcoin-pulse/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newPulseRepoFunc       = repository.NewPulseRepository
	newPollRepoFunc        = repository.NewPollRepository
	newPulseServiceFunc    = service.NewPulseService
	newPollServiceFunc     = service.NewPollService
	newPulsePollerFunc     = job.NewPulsePoller
	startPollerFunc        = func(p *job.PulsePoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           The Bitcoin Pulse API
// @version         1.0
// @description     Daily Bitcoin market snapshot, summary, poll, and report service.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis. Both are optional: without Postgres the poll
	// runs in memory, without Redis every read assembles a fresh snapshot.
	if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("postgres unavailable, snapshot and poll history disabled: %v", err)
	}
	os.Setenv("REDIS_URL", cfg.RedisURL)
	if err := initRedisFunc(ctx); err != nil {
		log.Printf("redis unavailable, caching disabled: %v", err)
	}

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	var snapshotStore service.SnapshotStore
	var pollStore service.PollStore
	if db.Pool != nil {
		pulseRepo := newPulseRepoFunc(db.Pool, tracer)
		if err := pulseRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		snapshotStore = pulseRepo
		pollStore = newPollRepoFunc(db.Pool, tracer)
	}

	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	// Create providers
	market := provider.NewCoinGeckoProvider(tracer)
	sentiment := provider.NewFearGreedProvider(tracer)
	mempool := provider.NewMempoolProvider(tracer, cfg.MempoolBaseURL)
	chain := provider.NewBlockchainInfoProvider(tracer, cfg.BlockchainInfoBaseURL)

	// Report writer falls back to the template engine without an API key
	var llm narrative.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = narrative.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	writer := narrative.NewWriter(tracer, llm, cfg.OpenAIModel)

	pulseService := newPulseServiceFunc(tracer, market, sentiment, mempool, chain, snapshotStore, writer, redisClient)
	pollService := newPollServiceFunc(tracer, pollStore, redisClient)

	// Analytics tracker, no consent means every event is dropped
	var sink analytics.Sink
	if cfg.AnalyticsEndpoint != "" {
		sink = analytics.NewHTTPSink(cfg.AnalyticsEndpoint)
	}
	tracker := analytics.NewTracker(sink, cfg.AnalyticsConsent)
	defer tracker.Close()

	// Start snapshot poller (background goroutine, stopped by ctx cancel)
	poller := newPulsePollerFunc(tracer, pulseService, cfg.PulsePollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(pulseService, pollService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, pulseService, pollService, tracker)
	h.EventsAPIKey = cfg.EventsAPIKey

	r := newRouterFunc()
	r.Use(otelgin.Middleware("bitcoin-pulse"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
