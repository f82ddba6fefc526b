// Package db owns the shared Postgres connection pool.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the process-wide connection pool, nil until InitPostgres succeeds.
var Pool *pgxpool.Pool

// InitPostgres connects to the database named by dsn and verifies the
// connection with a ping.
func InitPostgres(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database dsn is empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse database dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	Pool = pool
	return nil
}

// Close releases the pool. Safe to call when InitPostgres never ran.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
