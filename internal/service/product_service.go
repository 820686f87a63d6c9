package service

import (
	"context"

	"menuely/internal/model"
	"menuely/internal/saga"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	catalog
}

// NewProductService creates a new product service.
func NewProductService(deps CatalogDeps, logger zerolog.Logger) ProductService {
	logger = logger.With().Str("service", "product").Logger()
	return &productService{catalog: newCatalog(deps, logger)}
}

// CreateProduct uploads the image and persists it with the product.
// Currency and restaurant are copied from the category.
func (s *productService) CreateProduct(ctx context.Context, req *model.CreateProductRequest, restaurant model.Restaurant) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("product request is required")
	}
	if err := validateName("name", req.Name); err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	if err := validateImage(req.Image); err != nil {
		return nil, err
	}

	var product *model.Product
	err := s.runner.Run(ctx, "create product", func(ctx context.Context, u *saga.Unit) error {
		category, err := s.ownedCategory(ctx, u.Tx, req.CategoryID, restaurant)
		if err != nil {
			return err
		}

		img, err := s.uploadImage(ctx, u, req.Image)
		if err != nil {
			return err
		}

		product = &model.Product{
			CategoryID:   category.ID,
			RestaurantID: category.RestaurantID,
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Currency:     category.Currency,
			ImageID:      &img.ID,
			Image:        img,
		}
		if err := s.Products.Create(ctx, u.Tx, product); err != nil {
			return model.NewConflictError("failed to save product", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", req.CategoryID).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Int64("category_id", product.CategoryID).
		Msg("product created successfully")

	return product, nil
}

// UpdateProduct applies the provided fields and/or replaces the image. A
// replaced image's blob is deleted only after the new reference is committed.
func (s *productService) UpdateProduct(ctx context.Context, id int64, req *model.UpdateProductRequest, restaurant model.Restaurant) error {
	if req == nil || (req.Name == nil && req.Description == nil && req.Price == nil && req.Image.Empty()) {
		return model.ErrNothingToUpdate
	}
	if req.Name != nil {
		if err := validateName("name", *req.Name); err != nil {
			return err
		}
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return err
		}
	}
	if !req.Image.Empty() {
		if err := validateImage(req.Image); err != nil {
			return err
		}
	}

	err := s.runner.Run(ctx, "update product", func(ctx context.Context, u *saga.Unit) error {
		product, err := s.ownedProduct(ctx, u.Tx, id, restaurant)
		if err != nil {
			return err
		}

		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.Price != nil {
			product.Price = *req.Price
		}

		oldImageID, oldImage := product.ImageID, product.Image
		if !req.Image.Empty() {
			img, err := s.uploadImage(ctx, u, req.Image)
			if err != nil {
				return err
			}
			product.ImageID, product.Image = &img.ID, img
		}

		if err := s.Products.Update(ctx, u.Tx, product); err != nil {
			return model.NewConflictError("failed to save product", err)
		}

		if !req.Image.Empty() {
			return s.removeImage(ctx, u, oldImageID, oldImage)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return err
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated successfully")
	return nil
}

// DeleteProduct removes the product and its image.
func (s *productService) DeleteProduct(ctx context.Context, id int64, restaurant model.Restaurant) error {
	err := s.runner.Run(ctx, "delete product", func(ctx context.Context, u *saga.Unit) error {
		product, err := s.ownedProduct(ctx, u.Tx, id, restaurant)
		if err != nil {
			return err
		}
		return s.removeProduct(ctx, u, product)
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return err
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted successfully")
	return nil
}

// GetProduct retrieves a product with its image.
func (s *productService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.Products.GetByID(ctx, s.UnitOfWork.Reader(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, model.NewInternalError("failed to get product", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// ListProducts retrieves the products of a category.
func (s *productService) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	products, err := s.Products.ListByCategory(ctx, s.UnitOfWork.Reader(), categoryID)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to list products")
		return nil, model.NewInternalError("failed to list products", err)
	}
	return products, nil
}
