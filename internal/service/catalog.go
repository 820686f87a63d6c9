package service

import (
	"context"
	"strings"

	"menuely/internal/blob"
	"menuely/internal/model"
	"menuely/internal/notify"
	"menuely/internal/qr"
	"menuely/internal/repository"
	"menuely/internal/saga"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// QROptions configures QR code generation for new menus.
type QROptions struct {
	CallbackBaseURL string
	Size            int
	Concurrency     int
}

// CatalogDeps groups the collaborators of the catalog services.
type CatalogDeps struct {
	UnitOfWork  repository.UnitOfWork
	Restaurants repository.RestaurantRepository
	Menus       repository.MenuRepository
	Images      repository.ImageRepository
	Categories  repository.CategoryRepository
	Products    repository.ProductRepository
	Blobs       blob.Store
	Encoder     qr.Encoder
	Notifier    notify.Notifier
	QR          QROptions
}

// catalog holds what the menu, category and product services share,
// including the cascading removals that span all three.
type catalog struct {
	CatalogDeps
	runner *saga.Runner
	logger zerolog.Logger
}

func newCatalog(deps CatalogDeps, logger zerolog.Logger) catalog {
	return catalog{
		CatalogDeps: deps,
		runner:      saga.NewRunner(deps.UnitOfWork, logger),
		logger:      logger,
	}
}

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
}

// validateImage rejects an empty file or an unsupported media type.
func validateImage(f *model.ImageFile) error {
	if f.Empty() {
		return model.ErrImageRequired
	}
	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(f.MimeType, ";")[0]))
	if !allowedImageTypes[mimeType] {
		return model.ErrUnsupportedMediaType
	}
	return nil
}

func validateName(field string, name string) error {
	if strings.TrimSpace(name) == "" {
		return model.NewValidationError("%s is required", field)
	}
	return nil
}

// normalizeCurrency upper-cases a three-letter currency code.
func normalizeCurrency(currency string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if len(c) != 3 {
		return "", model.NewValidationError("currency must be a three-letter code")
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", model.NewValidationError("currency must be a three-letter code")
		}
	}
	return c, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return model.NewValidationError("price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return model.NewValidationError("price must have at most two decimal places")
	}
	return nil
}

// uploadImage uploads f, registers its deletion on rollback and persists
// the image row.
func (c *catalog) uploadImage(ctx context.Context, u *saga.Unit, f *model.ImageFile) (*model.Image, error) {
	obj, err := c.Blobs.Upload(ctx, f.Name, f.MimeType, f.Data)
	if err != nil {
		return nil, model.NewInternalError("failed to upload image", err)
	}
	c.deleteBlobOnRollback(u, obj.Key)

	img := &model.Image{Name: obj.Key, URL: obj.URL}
	if err := c.Images.Create(ctx, u.Tx, img); err != nil {
		return nil, model.NewConflictError("failed to save image", err)
	}

	return img, nil
}

func (c *catalog) deleteBlobOnRollback(u *saga.Unit, key string) {
	u.OnRollback("delete uploaded blob "+key, func(ctx context.Context) error {
		return c.Blobs.Delete(ctx, key)
	})
}

func (c *catalog) deleteBlobAfterCommit(u *saga.Unit, key string) {
	u.AfterCommit("delete replaced blob "+key, func(ctx context.Context) error {
		return c.Blobs.Delete(ctx, key)
	})
}

// removeImage deletes the image row now and its blob once committed.
func (c *catalog) removeImage(ctx context.Context, u *saga.Unit, imageID *int64, img *model.Image) error {
	if imageID == nil {
		return nil
	}
	if img == nil {
		found, err := c.Images.GetByID(ctx, u.Tx, *imageID)
		if err != nil {
			return model.NewInternalError("failed to load image", err)
		}
		if found == nil {
			return nil
		}
		img = found
	}

	if err := c.Images.Delete(ctx, u.Tx, img.ID); err != nil {
		return model.NewConflictError("failed to delete image", err)
	}
	c.deleteBlobAfterCommit(u, img.Name)
	return nil
}

// removeProduct deletes a product and its image.
func (c *catalog) removeProduct(ctx context.Context, u *saga.Unit, p *model.Product) error {
	if err := c.Products.Delete(ctx, u.Tx, p.ID); err != nil {
		return model.NewConflictError("failed to delete product", err)
	}
	return c.removeImage(ctx, u, p.ImageID, p.Image)
}

// removeCategory deletes a category with all of its products and images.
func (c *catalog) removeCategory(ctx context.Context, u *saga.Unit, category *model.Category) error {
	products, err := c.Products.ListByCategory(ctx, u.Tx, category.ID)
	if err != nil {
		return model.NewInternalError("failed to load products", err)
	}
	for i := range products {
		if err := c.removeProduct(ctx, u, &products[i]); err != nil {
			return err
		}
	}

	if err := c.Categories.Delete(ctx, u.Tx, category.ID); err != nil {
		return model.NewConflictError("failed to delete category", err)
	}
	return c.removeImage(ctx, u, category.ImageID, category.Image)
}

// ownedCategory loads a category and checks it belongs to the restaurant.
func (c *catalog) ownedCategory(ctx context.Context, q repository.Querier, id int64, restaurant model.Restaurant) (*model.Category, error) {
	category, err := c.Categories.GetByID(ctx, q, id)
	if err != nil {
		return nil, model.NewInternalError("failed to load category", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	if category.RestaurantID != restaurant.ID {
		return nil, model.ErrForbidden
	}
	return category, nil
}

// ownedMenu loads a menu and checks it belongs to the restaurant.
func (c *catalog) ownedMenu(ctx context.Context, q repository.Querier, id int64, restaurant model.Restaurant) (*model.Menu, error) {
	menu, err := c.Menus.GetByID(ctx, q, id)
	if err != nil {
		return nil, model.NewInternalError("failed to load menu", err)
	}
	if menu == nil {
		return nil, model.ErrMenuNotFound
	}
	if menu.RestaurantID != restaurant.ID {
		return nil, model.ErrForbidden
	}
	return menu, nil
}

// ownedProduct loads a product and checks it belongs to the restaurant.
func (c *catalog) ownedProduct(ctx context.Context, q repository.Querier, id int64, restaurant model.Restaurant) (*model.Product, error) {
	product, err := c.Products.GetByID(ctx, q, id)
	if err != nil {
		return nil, model.NewInternalError("failed to load product", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	if product.RestaurantID != restaurant.ID {
		return nil, model.ErrForbidden
	}
	return product, nil
}
