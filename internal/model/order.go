package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a customer order placed at a restaurant table.
type Order struct {
	ID              int64            `json:"id" db:"id"`
	RestaurantID    int64            `json:"restaurantId" db:"restaurant_id"`
	UserID          int64            `json:"userId" db:"user_id"`
	TableID         int              `json:"tableId" db:"table_id"`
	TotalPrice      decimal.Decimal  `json:"totalPrice" db:"total_price"`
	Currency        string           `json:"currency" db:"currency"`
	EmployerName    string           `json:"employerName" db:"employer_name"`
	CustomerName    string           `json:"customerName" db:"customer_name"`
	EmployeeName    *string          `json:"employeeName,omitempty" db:"employee_name"`
	AcceptedAt      *time.Time       `json:"acceptedAt,omitempty" db:"accepted_at"`
	OrderedProducts []OrderedProduct `json:"orderedProducts"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// Accepted reports whether an employee has taken the order.
func (o Order) Accepted() bool {
	return o.EmployeeName != nil
}

// OrderedProduct is an immutable snapshot of a product at order time.
// Price is the line total: round2(unit price * quantity).
type OrderedProduct struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"orderId" db:"order_id"`
	ProductID   int64           `json:"orderedProductId" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// CreateOrderRequest represents the request payload for creating an order.
// Prices are the client's claims; the server re-derives them.
type CreateOrderRequest struct {
	RestaurantID    int64                   `json:"restaurantId"`
	TableID         int                     `json:"tableId"`
	TotalPrice      decimal.Decimal         `json:"totalPrice"`
	OrderedProducts []OrderedProductRequest `json:"orderedProducts"`
}

// OrderedProductRequest represents a single line in an order request.
type OrderedProductRequest struct {
	ProductID int64           `json:"orderedProductId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// AcceptOrderRequest represents the request payload for accepting an order.
type AcceptOrderRequest struct {
	OrderID int64 `json:"orderId"`
}

// OrderSummary is pushed to a restaurant's order stream after creation.
type OrderSummary struct {
	OrderID      int64           `json:"orderId"`
	RestaurantID int64           `json:"restaurantId"`
	TableID      int             `json:"tableId"`
	CustomerName string          `json:"customerName"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Currency     string          `json:"currency"`
	ItemCount    int             `json:"itemCount"`
	CreatedAt    time.Time       `json:"createdAt"`
}
