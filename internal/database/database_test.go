package database

import (
	"context"
	"testing"
	"time"

	"menuely/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) (config.DatabaseConfig, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "testdb",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}

	return cfg, func() { _ = pgContainer.Terminate(ctx) }
}

func TestNewPool_InvalidHost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := config.DatabaseConfig{
		Host:           "invalid-host",
		Port:           5432,
		User:           "user",
		Password:       "pass",
		Database:       "testdb",
		MaxConnections: 1,
		MinConnections: 1,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, pool)
}

func TestMigrate_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	cfg, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var tables int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('restaurants', 'users', 'menus', 'images', 'categories', 'products', 'orders', 'ordered_products')
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 8, tables)
}

func TestMigrate_OneActiveMenuPerRestaurant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	cfg, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var restaurantID int64
	err = pool.QueryRow(ctx,
		`INSERT INTO restaurants (email, name) VALUES ('r@example.com', 'R') RETURNING id`,
	).Scan(&restaurantID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO menus (restaurant_id, name, currency, is_active) VALUES ($1, 'Lunch', 'USD', TRUE)`,
		restaurantID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO menus (restaurant_id, name, currency, is_active) VALUES ($1, 'Dinner', 'USD', TRUE)`,
		restaurantID)
	assert.Error(t, err, "second active menu must violate the partial unique index")

	_, err = pool.Exec(ctx,
		`INSERT INTO menus (restaurant_id, name, currency, is_active) VALUES ($1, 'Dinner', 'USD', FALSE)`,
		restaurantID)
	assert.NoError(t, err)
}
