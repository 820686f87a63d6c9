package database

import (
	"context"
	"fmt"
	"time"

	"menuely/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
)

// NewPool opens the PostgreSQL pool, retrying with a linear backoff while the
// database comes up. It gives up early when ctx is done.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "menuely"

	logger = logger.With().
		Str("component", "database").
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Logger()

	for attempt := 1; ; attempt++ {
		pool, err := connect(ctx, poolConfig)
		if err == nil {
			logger.Info().
				Int("max_connections", cfg.MaxConnections).
				Int("min_connections", cfg.MinConnections).
				Int("attempt", attempt).
				Msg("database connection pool ready")
			return pool, nil
		}
		if attempt == connectAttempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}

		wait := time.Duration(attempt) * 2 * time.Second
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("database not reachable")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		case <-time.After(wait):
		}
	}
}

func connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
