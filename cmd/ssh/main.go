package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"bitcoin-pulse/internal/cache"
	"bitcoin-pulse/internal/config"
	"bitcoin-pulse/internal/db"
	"bitcoin-pulse/internal/narrative"
	"bitcoin-pulse/internal/provider"
	"bitcoin-pulse/internal/repository"
	"bitcoin-pulse/internal/service"
	"bitcoin-pulse/internal/tui"
	"bitcoin-pulse/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newPulseRepoFunc    = repository.NewPulseRepository
	newPollRepoFunc     = repository.NewPollRepository
	newPulseServiceFunc = service.NewPulseService
	newPollServiceFunc  = service.NewPollService
	newWishServerFunc   = wish.NewServer
	setupSignalNotify   = ossignal.Notify
	waitForSignalFunc   = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis, both optional
	if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("postgres unavailable, poll history disabled: %v", err)
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

	// Create repositories
	var snapshotStore service.SnapshotStore
	var pollStore service.PollStore
	if db.Pool != nil {
		snapshotStore = newPulseRepoFunc(db.Pool, tracer)
		pollStore = newPollRepoFunc(db.Pool, tracer)
	}

	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	// Create services
	market := provider.NewCoinGeckoProvider(tracer)
	sentiment := provider.NewFearGreedProvider(tracer)
	mempool := provider.NewMempoolProvider(tracer, cfg.MempoolBaseURL)
	chain := provider.NewBlockchainInfoProvider(tracer, cfg.BlockchainInfoBaseURL)

	var llm narrative.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = narrative.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	writer := narrative.NewWriter(tracer, llm, cfg.OpenAIModel)

	pulseService := newPulseServiceFunc(tracer, market, sentiment, mempool, chain, snapshotStore, writer, redisClient)
	pollService := newPollServiceFunc(tracer, pollStore, redisClient)

	// Build Wish SSH server. The dashboard is read-mostly and votes are
	// keyed per SSH username, so any key is let in.
	addr := fmt.Sprintf("%s:%d", cfg.SSHBind, cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKey),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				svc := tui.Services{
					Pulse:    pulseService,
					Poll:     pollService,
					Username: s.User(),
				}

				model := tui.NewAppModel(svc)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
