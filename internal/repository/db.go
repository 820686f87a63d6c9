package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// unitOfWork implements UnitOfWork on a pgx connection pool.
type unitOfWork struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUnitOfWork creates a UnitOfWork backed by the pool.
func NewUnitOfWork(pool *pgxpool.Pool, logger zerolog.Logger) UnitOfWork {
	return &unitOfWork{
		pool:   pool,
		logger: logger.With().Str("repository", "unit_of_work").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (u *unitOfWork) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		u.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Reader returns the pool itself.
func (u *unitOfWork) Reader() Querier {
	return u.pool
}

// affected maps a zero-row write to pgx.ErrNoRows so callers see a missing row.
func affected(rows int64) error {
	if rows == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
