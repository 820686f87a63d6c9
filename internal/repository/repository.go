package repository

import (
	"context"
	"time"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
// Repository methods take one so the caller decides whether a call runs
// inside a unit of work or straight against the pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// UnitOfWork opens transactions. Every repository call of one orchestration
// must receive the same pgx.Tx.
type UnitOfWork interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Reader returns a Querier for reads outside a transaction.
	Reader() Querier
}

// RestaurantRepository defines the interface for restaurant data access operations.
type RestaurantRepository interface {
	// Create inserts a restaurant and fills in its generated fields.
	Create(ctx context.Context, q Querier, restaurant *model.Restaurant) error

	// GetByID retrieves a restaurant by its ID. Returns nil when it does not exist.
	GetByID(ctx context.Context, q Querier, id int64) (*model.Restaurant, error)

	// LockByID retrieves a restaurant and holds its row lock until the transaction ends.
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Restaurant, error)

	// SetActiveMenu points the restaurant at menuID, or clears it when menuID is nil.
	SetActiveMenu(ctx context.Context, q Querier, restaurantID int64, menuID *int64) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a user and fills in its generated fields.
	Create(ctx context.Context, q Querier, user *model.User) error

	// GetByID retrieves a user by its ID. Returns nil when it does not exist.
	GetByID(ctx context.Context, q Querier, id int64) (*model.User, error)
}

// MenuRepository defines the interface for menu data access operations.
type MenuRepository interface {
	Create(ctx context.Context, q Querier, menu *model.Menu) error
	GetByID(ctx context.Context, q Querier, id int64) (*model.Menu, error)
	ListByRestaurant(ctx context.Context, q Querier, restaurantID int64) ([]model.Menu, error)

	// Update persists name, description and currency. It refreshes
	// menu.IsActive from the row but never writes it.
	Update(ctx context.Context, q Querier, menu *model.Menu) error

	// SetActive sets is_active on one menu.
	SetActive(ctx context.Context, q Querier, id int64, active bool) error

	// DeactivateOthers clears is_active on every menu of the restaurant except keepID.
	DeactivateOthers(ctx context.Context, q Querier, restaurantID, keepID int64) (int64, error)

	Delete(ctx context.Context, q Querier, id int64) error
}

// ImageRepository defines the interface for image data access operations.
type ImageRepository interface {
	Create(ctx context.Context, q Querier, image *model.Image) error

	// CreateBatch inserts all images in one round trip and fills in their IDs.
	CreateBatch(ctx context.Context, q Querier, images []model.Image) error

	GetByID(ctx context.Context, q Querier, id int64) (*model.Image, error)
	ListByMenu(ctx context.Context, q Querier, menuID int64) ([]model.Image, error)
	Delete(ctx context.Context, q Querier, id int64) error
	DeleteByMenu(ctx context.Context, q Querier, menuID int64) (int64, error)
}

// CategoryRepository defines the interface for category data access operations.
// Reads return the category with its image attached.
type CategoryRepository interface {
	Create(ctx context.Context, q Querier, category *model.Category) error
	GetByID(ctx context.Context, q Querier, id int64) (*model.Category, error)
	ListByMenu(ctx context.Context, q Querier, menuID int64) ([]model.Category, error)

	// Update persists name, currency and image_id.
	Update(ctx context.Context, q Querier, category *model.Category) error

	// UpdateAll persists every category in one batch.
	UpdateAll(ctx context.Context, q Querier, categories []model.Category) error

	Delete(ctx context.Context, q Querier, id int64) error
}

// ProductRepository defines the interface for product data access operations.
// Reads return the product with its image attached.
type ProductRepository interface {
	Create(ctx context.Context, q Querier, product *model.Product) error
	GetByID(ctx context.Context, q Querier, id int64) (*model.Product, error)

	// GetByIDs retrieves every existing product among ids. Missing IDs are skipped.
	GetByIDs(ctx context.Context, q Querier, ids []int64) ([]model.Product, error)

	ListByCategory(ctx context.Context, q Querier, categoryID int64) ([]model.Product, error)

	// Update persists name, description, price, currency and image_id.
	Update(ctx context.Context, q Querier, product *model.Product) error

	// UpdateAll persists every product in one batch.
	UpdateAll(ctx context.Context, q Querier, products []model.Product) error

	Delete(ctx context.Context, q Querier, id int64) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts the order and its ordered products, filling in generated fields.
	Create(ctx context.Context, q Querier, order *model.Order) error

	// GetByID retrieves an order with its ordered products. Returns nil when it does not exist.
	GetByID(ctx context.Context, q Querier, id int64) (*model.Order, error)

	ListByUser(ctx context.Context, q Querier, userID int64) ([]model.Order, error)
	ListByRestaurant(ctx context.Context, q Querier, restaurantID int64) ([]model.Order, error)

	// Accept stamps the accepting employee on the order.
	Accept(ctx context.Context, q Querier, id int64, employeeName string, acceptedAt time.Time) error
}
