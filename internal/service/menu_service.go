package service

import (
	"context"
	"fmt"

	"menuely/internal/model"
	"menuely/internal/qr"
	"menuely/internal/saga"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// menuService implements MenuService.
type menuService struct {
	catalog
}

// NewMenuService creates a new menu service.
func NewMenuService(deps CatalogDeps, logger zerolog.Logger) MenuService {
	logger = logger.With().Str("service", "menu").Logger()
	return &menuService{catalog: newCatalog(deps, logger)}
}

// CreateMenu persists the menu, then renders and uploads one QR code per
// table concurrently. Every uploaded object is deleted again if the unit of
// work does not commit.
func (s *menuService) CreateMenu(ctx context.Context, req *model.CreateMenuRequest, restaurant model.Restaurant) (*model.Menu, error) {
	if req == nil {
		return nil, model.NewValidationError("menu request is required")
	}
	if req.TableCount < 0 || req.TableCount > model.MaxTablesPerMenu {
		s.logger.Warn().
			Int64("restaurant_id", restaurant.ID).
			Int("table_count", req.TableCount).
			Msg("table count out of range")
		return nil, model.ErrTooManyTables
	}
	if err := validateName("name", req.Name); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	menu := &model.Menu{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Description:  req.Description,
		Currency:     currency,
	}

	err = s.runner.Run(ctx, "create menu", func(ctx context.Context, u *saga.Unit) error {
		if err := s.Menus.Create(ctx, u.Tx, menu); err != nil {
			return model.NewConflictError("failed to save menu", err)
		}

		images, err := s.generateQRCodes(ctx, u, menu.ID, req.TableCount)
		if err != nil {
			return err
		}

		if err := s.Images.CreateBatch(ctx, u.Tx, images); err != nil {
			return model.NewConflictError("failed to save QR code images", err)
		}
		menu.QRCodeImages = images
		if len(images) == 0 {
			return nil
		}

		tables := make([]model.TableURL, len(images))
		for i, img := range images {
			tables[i] = model.TableURL{TableID: *img.TableID, URL: img.URL}
		}
		u.AfterCommit("notify qr codes ready", func(ctx context.Context) error {
			s.Notifier.QRCodesReady(ctx, restaurant, menu.Name, tables)
			return nil
		})

		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("restaurant_id", restaurant.ID).Msg("failed to create menu")
		return nil, err
	}

	s.logger.Info().
		Int64("menu_id", menu.ID).
		Int64("restaurant_id", restaurant.ID).
		Int("tables", len(menu.QRCodeImages)).
		Msg("menu created successfully")

	return menu, nil
}

// generateQRCodes encodes and uploads the QR code of every table. The
// returned images are ordered by table and not yet persisted.
func (s *menuService) generateQRCodes(ctx context.Context, u *saga.Unit, menuID int64, tableCount int) ([]model.Image, error) {
	images := make([]model.Image, tableCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.QR.Concurrency, 1))

	for i := range images {
		i := i
		tableID := i + 1
		g.Go(func() error {
			url, err := qr.TableURL(s.QR.CallbackBaseURL, menuID, tableID)
			if err != nil {
				return model.NewInternalError("failed to build table URL", err)
			}

			png, err := s.Encoder.Encode(url, s.QR.Size)
			if err != nil {
				return model.NewInternalError(fmt.Sprintf("failed to encode QR code for table %d", tableID), err)
			}

			obj, err := s.Blobs.Upload(gctx, qr.FileName(menuID, tableID), "image/png", png)
			if err != nil {
				return model.NewInternalError(fmt.Sprintf("failed to upload QR code for table %d", tableID), err)
			}
			s.deleteBlobOnRollback(u, obj.Key)

			images[i] = model.Image{
				Name:    obj.Key,
				URL:     obj.URL,
				MenuID:  &menuID,
				TableID: &tableID,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return images, nil
}

// UpdateMenu applies the provided fields in one unit of work.
func (s *menuService) UpdateMenu(ctx context.Context, id int64, req *model.UpdateMenuRequest, restaurant model.Restaurant) error {
	if req == nil || (req.Name == nil && req.Description == nil && req.Currency == nil && req.IsActive == nil) {
		return model.ErrNothingToUpdate
	}
	if req.Name != nil {
		if err := validateName("name", *req.Name); err != nil {
			return err
		}
	}
	var currency string
	if req.Currency != nil {
		c, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return err
		}
		currency = c
	}

	err := s.runner.Run(ctx, "update menu", func(ctx context.Context, u *saga.Unit) error {
		menu, err := s.ownedMenu(ctx, u.Tx, id, restaurant)
		if err != nil {
			return err
		}

		if req.Name != nil {
			menu.Name = *req.Name
		}
		if req.Description != nil {
			menu.Description = *req.Description
		}

		if req.IsActive != nil {
			if err := s.setActive(ctx, u, menu, *req.IsActive); err != nil {
				return err
			}
		}

		if req.Currency != nil && currency != menu.Currency {
			if err := s.cascadeCurrency(ctx, u, menu.ID, currency); err != nil {
				return err
			}
			menu.Currency = currency
		}

		if req.Name == nil && req.Description == nil && req.Currency == nil {
			return nil
		}
		if err := s.Menus.Update(ctx, u.Tx, menu); err != nil {
			return model.NewConflictError("failed to save menu", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_id", id).Msg("failed to update menu")
		return err
	}

	s.logger.Info().Int64("menu_id", id).Msg("menu updated successfully")
	return nil
}

// setActive toggles the menu and keeps the restaurant's active menu in
// step. The restaurant row lock serializes concurrent activations; the
// partial unique index on menus rejects whatever slips past it.
func (s *menuService) setActive(ctx context.Context, u *saga.Unit, menu *model.Menu, active bool) error {
	restaurant, err := s.Restaurants.LockByID(ctx, u.Tx, menu.RestaurantID)
	if err != nil {
		return model.NewInternalError("failed to lock restaurant", err)
	}
	if restaurant == nil {
		return model.ErrRestaurantNotFound
	}

	if active {
		n, err := s.Menus.DeactivateOthers(ctx, u.Tx, menu.RestaurantID, menu.ID)
		if err != nil {
			return model.NewConflictError("failed to deactivate menus", err)
		}
		s.logger.Debug().Int64("menu_id", menu.ID).Int64("deactivated", n).Msg("sibling menus deactivated")

		if err := s.Menus.SetActive(ctx, u.Tx, menu.ID, true); err != nil {
			return model.NewConflictError("failed to activate menu", err)
		}
		if err := s.Restaurants.SetActiveMenu(ctx, u.Tx, menu.RestaurantID, &menu.ID); err != nil {
			return model.NewConflictError("failed to set active menu", err)
		}
	} else {
		if err := s.Menus.SetActive(ctx, u.Tx, menu.ID, false); err != nil {
			return model.NewConflictError("failed to deactivate menu", err)
		}
		if restaurant.ActiveMenuID != nil && *restaurant.ActiveMenuID == menu.ID {
			if err := s.Restaurants.SetActiveMenu(ctx, u.Tx, menu.RestaurantID, nil); err != nil {
				return model.NewConflictError("failed to clear active menu", err)
			}
		}
	}

	menu.IsActive = active
	return nil
}

// cascadeCurrency rewrites the currency of every category and product of
// the menu.
func (s *menuService) cascadeCurrency(ctx context.Context, u *saga.Unit, menuID int64, currency string) error {
	categories, err := s.Categories.ListByMenu(ctx, u.Tx, menuID)
	if err != nil {
		return model.NewInternalError("failed to load categories", err)
	}

	var products []model.Product
	for i := range categories {
		categories[i].Currency = currency

		items, err := s.Products.ListByCategory(ctx, u.Tx, categories[i].ID)
		if err != nil {
			return model.NewInternalError("failed to load products", err)
		}
		for j := range items {
			items[j].Currency = currency
		}
		products = append(products, items...)
	}

	if err := s.Categories.UpdateAll(ctx, u.Tx, categories); err != nil {
		return model.NewConflictError("failed to update category currency", err)
	}
	if err := s.Products.UpdateAll(ctx, u.Tx, products); err != nil {
		return model.NewConflictError("failed to update product currency", err)
	}

	s.logger.Debug().
		Int64("menu_id", menuID).
		Str("currency", currency).
		Int("categories", len(categories)).
		Int("products", len(products)).
		Msg("currency cascaded")

	return nil
}

// DeleteMenu removes the menu, its categories with their products, and its
// QR images. Blob objects are deleted once the rows are gone.
func (s *menuService) DeleteMenu(ctx context.Context, id int64, restaurant model.Restaurant) error {
	err := s.runner.Run(ctx, "delete menu", func(ctx context.Context, u *saga.Unit) error {
		menu, err := s.ownedMenu(ctx, u.Tx, id, restaurant)
		if err != nil {
			return err
		}

		categories, err := s.Categories.ListByMenu(ctx, u.Tx, menu.ID)
		if err != nil {
			return model.NewInternalError("failed to load categories", err)
		}
		for i := range categories {
			if err := s.removeCategory(ctx, u, &categories[i]); err != nil {
				return err
			}
		}

		images, err := s.Images.ListByMenu(ctx, u.Tx, menu.ID)
		if err != nil {
			return model.NewInternalError("failed to load QR code images", err)
		}
		if _, err := s.Images.DeleteByMenu(ctx, u.Tx, menu.ID); err != nil {
			return model.NewConflictError("failed to delete QR code images", err)
		}
		for _, img := range images {
			s.deleteBlobAfterCommit(u, img.Name)
		}

		if err := s.Menus.Delete(ctx, u.Tx, menu.ID); err != nil {
			return model.NewConflictError("failed to delete menu", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_id", id).Msg("failed to delete menu")
		return err
	}

	s.logger.Info().Int64("menu_id", id).Msg("menu deleted successfully")
	return nil
}

// GetMenu retrieves a menu with its QR images.
func (s *menuService) GetMenu(ctx context.Context, id int64) (*model.Menu, error) {
	reader := s.UnitOfWork.Reader()

	menu, err := s.Menus.GetByID(ctx, reader, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_id", id).Msg("failed to get menu")
		return nil, model.NewInternalError("failed to get menu", err)
	}
	if menu == nil {
		return nil, model.ErrMenuNotFound
	}

	images, err := s.Images.ListByMenu(ctx, reader, id)
	if err != nil {
		return nil, model.NewInternalError("failed to get QR code images", err)
	}
	menu.QRCodeImages = images

	return menu, nil
}

// ListMenus retrieves the menus of a restaurant with their QR images.
func (s *menuService) ListMenus(ctx context.Context, restaurantID int64) ([]model.Menu, error) {
	reader := s.UnitOfWork.Reader()

	menus, err := s.Menus.ListByRestaurant(ctx, reader, restaurantID)
	if err != nil {
		s.logger.Error().Err(err).Int64("restaurant_id", restaurantID).Msg("failed to list menus")
		return nil, model.NewInternalError("failed to list menus", err)
	}

	for i := range menus {
		images, err := s.Images.ListByMenu(ctx, reader, menus[i].ID)
		if err != nil {
			return nil, model.NewInternalError("failed to get QR code images", err)
		}
		menus[i].QRCodeImages = images
	}

	return menus, nil
}
