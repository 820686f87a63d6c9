package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"menuely/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the migrated schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedRestaurant inserts a restaurant and returns its ID.
func SeedRestaurant(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO restaurants (email, name, description, country, city, address, postal_code)
		 VALUES ($1, $2, '', 'NL', 'Amsterdam', 'Dam 1', '1012')
		 RETURNING id`,
		fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()), name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed restaurant %s: %v", name, err)
	}
	return id
}

// SeedUser inserts a user, employed by employerID when it is set.
func SeedUser(t *testing.T, pool *pgxpool.Pool, firstname, lastname string, employerID *int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, firstname, lastname, employer_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		fmt.Sprintf("%s-%d@example.com", firstname, time.Now().UnixNano()), firstname, lastname, employerID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", firstname, err)
	}
	return id
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`TRUNCATE ordered_products, orders, products, categories, images, menus, users, restaurants RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Logf("failed to clean tables: %v", err)
	}
}
