package db

import (
	"context"
	"fmt"
	"time"

	"sherk_portal/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and waits for the database to answer, trying up to
// attempts times with a linear backoff.
func Connect(ctx context.Context, dsn string, attempts int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if attempts < 1 {
		attempts = 1
	}
	for i := 1; ; i++ {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = pool.Ping(pctx)
		cancel()
		if err == nil {
			break
		}
		if i >= attempts {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Warn("database not ready", "attempt", i, "error", err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}

	logger.Info("database connected", "max_conns", cfg.MaxConns)
	return pool, nil
}
