package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxTablesPerMenu caps the number of QR-coded tables generated for a menu.
const MaxTablesPerMenu = 25

// Restaurant owns menus and receives orders.
type Restaurant struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Country      string    `json:"country" db:"country"`
	City         string    `json:"city" db:"city"`
	Address      string    `json:"address" db:"address"`
	PostalCode   string    `json:"postalCode" db:"postal_code"`
	ActiveMenuID *int64    `json:"activeMenuId,omitempty" db:"active_menu_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// User is a customer, or an employee when EmployerID is set.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Firstname  string    `json:"firstname" db:"firstname"`
	Lastname   string    `json:"lastname" db:"lastname"`
	EmployerID *int64    `json:"employerId,omitempty" db:"employer_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName returns the name stamped on orders.
func (u User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// Image is a stored blob object. Name is the blob store key.
// MenuID and TableID are set for QR code images only.
type Image struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	URL       string    `json:"url" db:"url"`
	MenuID    *int64    `json:"menuId,omitempty" db:"menu_id"`
	TableID   *int      `json:"tableId,omitempty" db:"table_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Menu belongs to a restaurant and owns categories and per-table QR images.
type Menu struct {
	ID           int64     `json:"id" db:"id"`
	RestaurantID int64     `json:"restaurantId" db:"restaurant_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Currency     string    `json:"currency" db:"currency"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	QRCodeImages []Image   `json:"qrCodeImages,omitempty"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Category belongs to a menu. Currency and RestaurantID are copied from the menu.
type Category struct {
	ID           int64     `json:"id" db:"id"`
	MenuID       int64     `json:"menuId" db:"menu_id"`
	RestaurantID int64     `json:"restaurantId" db:"restaurant_id"`
	Name         string    `json:"name" db:"name"`
	Currency     string    `json:"currency" db:"currency"`
	ImageID      *int64    `json:"-" db:"image_id"`
	Image        *Image    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Product belongs to a category. Currency and RestaurantID are copied from the
// category; the order engine trusts RestaurantID without re-joining.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	CategoryID   int64           `json:"categoryId" db:"category_id"`
	RestaurantID int64           `json:"restaurantId" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Currency     string          `json:"currency" db:"currency"`
	ImageID      *int64          `json:"-" db:"image_id"`
	Image        *Image          `json:"image,omitempty"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// ImageURL returns the product image URL or an empty string.
func (p Product) ImageURL() string {
	if p.Image == nil {
		return ""
	}
	return p.Image.URL
}

// ImageFile is an uploaded file as received from the transport.
type ImageFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Empty reports whether no file content was supplied.
func (f *ImageFile) Empty() bool {
	return f == nil || len(f.Data) == 0
}

// TableURL pairs a table number with the URL of its QR code image.
type TableURL struct {
	TableID int    `json:"tableId"`
	URL     string `json:"url"`
}

// CreateMenuRequest represents the request payload for creating a menu.
type CreateMenuRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
	TableCount  int    `json:"tableCount"`
}

// UpdateMenuRequest carries the optional fields of a menu update.
type UpdateMenuRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name   string
	MenuID int64
	Image  *ImageFile
}

// UpdateCategoryRequest carries the optional fields of a category update.
type UpdateCategoryRequest struct {
	Name  *string
	Image *ImageFile
}

// CreateProductRequest represents the request payload for creating a product.
type CreateProductRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  int64
	Image       *ImageFile
}

// UpdateProductRequest carries the optional fields of a product update.
type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Image       *ImageFile
}
