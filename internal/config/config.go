package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	PulsePollSecs    int

	MempoolBaseURL        string
	BlockchainInfoBaseURL string

	AnalyticsEndpoint string
	AnalyticsConsent  bool
	EventsAPIKey      string

	OpenAIAPIKey string
	OpenAIModel  string

	ReportsDir string

	SSHBind      string
	SSHPort      int
	SSHHostKey   string
	MCPTransport string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot will be disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, snapshot history and poll votes will not persist")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.PulsePollSecs = 60
	if v := os.Getenv("PULSE_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PulsePollSecs = n
		}
	}

	cfg.MempoolBaseURL = strings.TrimSpace(os.Getenv("MEMPOOL_BASE_URL"))
	if cfg.MempoolBaseURL == "" {
		cfg.MempoolBaseURL = "https://mempool.space"
	}

	cfg.BlockchainInfoBaseURL = strings.TrimSpace(os.Getenv("BLOCKCHAIN_INFO_BASE_URL"))
	if cfg.BlockchainInfoBaseURL == "" {
		cfg.BlockchainInfoBaseURL = "https://blockchain.info"
	}

	cfg.AnalyticsEndpoint = strings.TrimSpace(os.Getenv("ANALYTICS_ENDPOINT"))
	cfg.AnalyticsConsent = strings.EqualFold(strings.TrimSpace(os.Getenv("ANALYTICS_CONSENT")), "true")
	if cfg.AnalyticsEndpoint == "" {
		log.Println("Warning: ANALYTICS_ENDPOINT not set, events will be discarded")
	}
	cfg.EventsAPIKey = strings.TrimSpace(os.Getenv("EVENTS_API_KEY"))

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, reports will use the template engine")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.ReportsDir = strings.TrimSpace(os.Getenv("REPORTS_DIR"))
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}

	cfg.SSHBind = strings.TrimSpace(os.Getenv("SSH_BIND"))
	if cfg.SSHBind == "" {
		cfg.SSHBind = "0.0.0.0"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKey = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKey == "" {
		cfg.SSHHostKey = ".ssh/pulse_host_key"
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	return cfg
}
