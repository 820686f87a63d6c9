package repository

import (
	"context"
	"testing"
	"time"

	"menuely/internal/database"
	"menuely/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer, applies the schema and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

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

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// fixtures bundles the repositories under test.
type fixtures struct {
	pool        *pgxpool.Pool
	uow         UnitOfWork
	restaurants RestaurantRepository
	users       UserRepository
	menus       MenuRepository
	images      ImageRepository
	categories  CategoryRepository
	products    ProductRepository
	orders      OrderRepository
}

func newFixtures(pool *pgxpool.Pool) *fixtures {
	logger := zerolog.Nop()
	return &fixtures{
		pool:        pool,
		uow:         NewUnitOfWork(pool, logger),
		restaurants: NewRestaurantRepository(logger),
		users:       NewUserRepository(logger),
		menus:       NewMenuRepository(logger),
		images:      NewImageRepository(logger),
		categories:  NewCategoryRepository(logger),
		products:    NewProductRepository(logger),
		orders:      NewOrderRepository(logger),
	}
}

func (f *fixtures) seedRestaurant(t *testing.T, email, name string) *model.Restaurant {
	r := &model.Restaurant{Email: email, Name: name, City: "Lisbon"}
	require.NoError(t, f.restaurants.Create(context.Background(), f.pool, r))
	return r
}

func (f *fixtures) seedUser(t *testing.T, email string, employerID *int64) *model.User {
	u := &model.User{Email: email, Firstname: "Ada", Lastname: "Lovelace", EmployerID: employerID}
	require.NoError(t, f.users.Create(context.Background(), f.pool, u))
	return u
}

func (f *fixtures) seedMenu(t *testing.T, restaurantID int64, currency string) *model.Menu {
	m := &model.Menu{RestaurantID: restaurantID, Name: "Lunch", Currency: currency}
	require.NoError(t, f.menus.Create(context.Background(), f.pool, m))
	return m
}

func (f *fixtures) seedImage(t *testing.T, key string) *model.Image {
	img := &model.Image{Name: key, URL: "https://cdn.example.com/" + key}
	require.NoError(t, f.images.Create(context.Background(), f.pool, img))
	return img
}

func (f *fixtures) seedCategory(t *testing.T, menu *model.Menu, imageID *int64) *model.Category {
	c := &model.Category{
		MenuID:       menu.ID,
		RestaurantID: menu.RestaurantID,
		Name:         "Mains",
		Currency:     menu.Currency,
		ImageID:      imageID,
	}
	require.NoError(t, f.categories.Create(context.Background(), f.pool, c))
	return c
}

func (f *fixtures) seedProduct(t *testing.T, category *model.Category, name, price string) *model.Product {
	p := &model.Product{
		CategoryID:   category.ID,
		RestaurantID: category.RestaurantID,
		Name:         name,
		Description:  name + " description",
		Price:        decimal.RequireFromString(price),
		Currency:     category.Currency,
	}
	require.NoError(t, f.products.Create(context.Background(), f.pool, p))
	return p
}
