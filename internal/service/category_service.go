package service

import (
	"context"

	"menuely/internal/model"
	"menuely/internal/saga"

	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	catalog
}

// NewCategoryService creates a new category service.
func NewCategoryService(deps CatalogDeps, logger zerolog.Logger) CategoryService {
	logger = logger.With().Str("service", "category").Logger()
	return &categoryService{catalog: newCatalog(deps, logger)}
}

// CreateCategory uploads the image and persists it with the category.
// The currency is copied from the menu.
func (s *categoryService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest, restaurant model.Restaurant) (*model.Category, error) {
	if req == nil {
		return nil, model.NewValidationError("category request is required")
	}
	if err := validateName("name", req.Name); err != nil {
		return nil, err
	}
	if err := validateImage(req.Image); err != nil {
		return nil, err
	}

	var category *model.Category
	err := s.runner.Run(ctx, "create category", func(ctx context.Context, u *saga.Unit) error {
		menu, err := s.ownedMenu(ctx, u.Tx, req.MenuID, restaurant)
		if err != nil {
			return err
		}

		img, err := s.uploadImage(ctx, u, req.Image)
		if err != nil {
			return err
		}

		category = &model.Category{
			MenuID:       menu.ID,
			RestaurantID: menu.RestaurantID,
			Name:         req.Name,
			Currency:     menu.Currency,
			ImageID:      &img.ID,
			Image:        img,
		}
		if err := s.Categories.Create(ctx, u.Tx, category); err != nil {
			return model.NewConflictError("failed to save category", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_id", req.MenuID).Msg("failed to create category")
		return nil, err
	}

	s.logger.Info().
		Int64("category_id", category.ID).
		Int64("menu_id", category.MenuID).
		Msg("category created successfully")

	return category, nil
}

// UpdateCategory renames the category and/or replaces its image. A replaced
// image's blob is deleted only after the new reference is committed.
func (s *categoryService) UpdateCategory(ctx context.Context, id int64, req *model.UpdateCategoryRequest, restaurant model.Restaurant) error {
	if req == nil || (req.Name == nil && req.Image.Empty()) {
		return model.ErrNothingToUpdate
	}
	if req.Name != nil {
		if err := validateName("name", *req.Name); err != nil {
			return err
		}
	}
	if !req.Image.Empty() {
		if err := validateImage(req.Image); err != nil {
			return err
		}
	}

	err := s.runner.Run(ctx, "update category", func(ctx context.Context, u *saga.Unit) error {
		category, err := s.ownedCategory(ctx, u.Tx, id, restaurant)
		if err != nil {
			return err
		}

		if req.Name != nil {
			category.Name = *req.Name
		}

		oldImageID, oldImage := category.ImageID, category.Image
		if !req.Image.Empty() {
			img, err := s.uploadImage(ctx, u, req.Image)
			if err != nil {
				return err
			}
			category.ImageID, category.Image = &img.ID, img
		}

		if err := s.Categories.Update(ctx, u.Tx, category); err != nil {
			return model.NewConflictError("failed to save category", err)
		}

		if !req.Image.Empty() {
			return s.removeImage(ctx, u, oldImageID, oldImage)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to update category")
		return err
	}

	s.logger.Info().Int64("category_id", id).Msg("category updated successfully")
	return nil
}

// DeleteCategory removes the category, its products and their images.
func (s *categoryService) DeleteCategory(ctx context.Context, id int64, restaurant model.Restaurant) error {
	err := s.runner.Run(ctx, "delete category", func(ctx context.Context, u *saga.Unit) error {
		category, err := s.ownedCategory(ctx, u.Tx, id, restaurant)
		if err != nil {
			return err
		}
		return s.removeCategory(ctx, u, category)
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return err
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted successfully")
	return nil
}

// GetCategory retrieves a category with its image.
func (s *categoryService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.Categories.GetByID(ctx, s.UnitOfWork.Reader(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to get category")
		return nil, model.NewInternalError("failed to get category", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

// ListCategories retrieves the categories of a menu.
func (s *categoryService) ListCategories(ctx context.Context, menuID int64) ([]model.Category, error) {
	categories, err := s.Categories.ListByMenu(ctx, s.UnitOfWork.Reader(), menuID)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_id", menuID).Msg("failed to list categories")
		return nil, model.NewInternalError("failed to list categories", err)
	}
	return categories, nil
}
