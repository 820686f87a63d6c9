package service

import (
	"context"

	"menuely/internal/model"
)

// MenuService defines operations for menu management.
type MenuService interface {
	// CreateMenu persists the menu and one uploaded QR image per table.
	CreateMenu(ctx context.Context, req *model.CreateMenuRequest, restaurant model.Restaurant) (*model.Menu, error)

	// UpdateMenu applies the provided fields. Activation deactivates every
	// other menu of the restaurant; a currency change cascades to the
	// menu's categories and products.
	UpdateMenu(ctx context.Context, id int64, req *model.UpdateMenuRequest, restaurant model.Restaurant) error

	// DeleteMenu removes the menu with its categories, products and images.
	DeleteMenu(ctx context.Context, id int64, restaurant model.Restaurant) error

	// GetMenu retrieves a menu with its QR images.
	GetMenu(ctx context.Context, id int64) (*model.Menu, error)

	// ListMenus retrieves the menus of a restaurant with their QR images.
	ListMenus(ctx context.Context, restaurantID int64) ([]model.Menu, error)
}

// CategoryService defines operations for category management.
type CategoryService interface {
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest, restaurant model.Restaurant) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *model.UpdateCategoryRequest, restaurant model.Restaurant) error
	DeleteCategory(ctx context.Context, id int64, restaurant model.Restaurant) error
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context, menuID int64) ([]model.Category, error)
}

// ProductService defines operations for product management.
type ProductService interface {
	CreateProduct(ctx context.Context, req *model.CreateProductRequest, restaurant model.Restaurant) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *model.UpdateProductRequest, restaurant model.Restaurant) error
	DeleteProduct(ctx context.Context, id int64, restaurant model.Restaurant) error
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder validates the claimed prices against live products and
	// persists the order with its product snapshots.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest, user model.User) (*model.Order, error)

	// AcceptOrder stamps the employee on an order of their employer.
	AcceptOrder(ctx context.Context, id int64, employee model.User) error

	GetUserOrder(ctx context.Context, id int64, user model.User) (*model.Order, error)
	ListUserOrders(ctx context.Context, user model.User) ([]model.Order, error)
	GetRestaurantOrder(ctx context.Context, id int64, employee model.User) (*model.Order, error)
	ListRestaurantOrders(ctx context.Context, employee model.User) ([]model.Order, error)
}
