package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PULSE_POLL_SECS", "")
	t.Setenv("MEMPOOL_BASE_URL", "")
	t.Setenv("ANALYTICS_CONSENT", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("MCP_TRANSPORT", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.PulsePollSecs != 60 {
		t.Fatalf("expected default poll secs 60, got %d", cfg.PulsePollSecs)
	}
	if cfg.MempoolBaseURL != "https://mempool.space" {
		t.Fatalf("expected default mempool url, got %s", cfg.MempoolBaseURL)
	}
	if cfg.AnalyticsConsent {
		t.Fatal("analytics consent should default to off")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %s", cfg.OpenAIModel)
	}
	if cfg.ReportsDir != "reports" {
		t.Fatalf("expected default reports dir, got %s", cfg.ReportsDir)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", cfg.MCPTransport)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("PULSE_POLL_SECS", "120")
	t.Setenv("ANALYTICS_ENDPOINT", "https://collector.example/events")
	t.Setenv("ANALYTICS_CONSENT", "TRUE")
	t.Setenv("SSH_PORT", "2022")
	t.Setenv("EVENTS_API_KEY", "ingest-key")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.PulsePollSecs != 120 {
		t.Fatalf("expected poll secs 120, got %d", cfg.PulsePollSecs)
	}
	if !cfg.AnalyticsConsent {
		t.Fatal("expected analytics consent on")
	}
	if cfg.SSHPort != 2022 {
		t.Fatalf("expected ssh port 2022, got %d", cfg.SSHPort)
	}
	if cfg.EventsAPIKey != "ingest-key" {
		t.Fatalf("expected events api key, got %q", cfg.EventsAPIKey)
	}

	t.Setenv("PULSE_POLL_SECS", "bad")
	cfg = Load()
	if cfg.PulsePollSecs != 60 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.PulsePollSecs)
	}
}

func TestLoadRejectsUnknownMCPTransport(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")

	cfg := Load()
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %s", cfg.MCPTransport)
	}
}
