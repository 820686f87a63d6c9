package repository

import (
	"context"
	"errors"
	"fmt"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const menuColumns = `id, restaurant_id, name, description, currency, is_active, created_at, updated_at`

// menuRepository implements the MenuRepository interface using PostgreSQL.
type menuRepository struct {
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

func scanMenu(row pgx.Row) (*model.Menu, error) {
	var m model.Menu
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Currency,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a menu and fills in its generated fields.
func (r *menuRepository) Create(ctx context.Context, q Querier, menu *model.Menu) error {
	query := `
		INSERT INTO menus (restaurant_id, name, description, currency, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, menu.RestaurantID, menu.Name, menu.Description, menu.Currency, menu.IsActive).
		Scan(&menu.ID, &menu.CreatedAt, &menu.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("restaurant_id", menu.RestaurantID).Msg("failed to create menu")
		return fmt.Errorf("failed to create menu: %w", err)
	}

	r.logger.Debug().Int64("menu_id", menu.ID).Msg("menu created successfully")
	return nil
}

// GetByID retrieves a menu by its ID, without its QR images.
func (r *menuRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE id = $1`

	menu, err := scanMenu(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("menu_id", id).Msg("menu not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("menu_id", id).Msg("failed to query menu")
		return nil, fmt.Errorf("failed to query menu: %w", err)
	}

	return menu, nil
}

// ListByRestaurant retrieves all menus of a restaurant, newest first.
func (r *menuRepository) ListByRestaurant(ctx context.Context, q Querier, restaurantID int64) ([]model.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE restaurant_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := q.Query(ctx, query, restaurantID)
	if err != nil {
		r.logger.Error().Err(err).Int64("restaurant_id", restaurantID).Msg("failed to query menus")
		return nil, fmt.Errorf("failed to query menus: %w", err)
	}
	defer rows.Close()

	menus := []model.Menu{}
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu row")
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		menus = append(menus, *m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu rows")
		return nil, fmt.Errorf("error iterating menus: %w", err)
	}

	return menus, nil
}

// Update persists name, description and currency. is_active only changes
// through SetActive.
func (r *menuRepository) Update(ctx context.Context, q Querier, menu *model.Menu) error {
	query := `
		UPDATE menus
		SET name = $2, description = $3, currency = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING is_active, updated_at
	`

	err := q.QueryRow(ctx, query, menu.ID, menu.Name, menu.Description, menu.Currency).
		Scan(&menu.IsActive, &menu.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", menu.ID).Msg("failed to update menu")
		return fmt.Errorf("failed to update menu: %w", err)
	}

	return nil
}

// SetActive sets is_active on one menu.
func (r *menuRepository) SetActive(ctx context.Context, q Querier, id int64, active bool) error {
	tag, err := q.Exec(ctx, `UPDATE menus SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", id).Bool("active", active).Msg("failed to set menu active flag")
		return fmt.Errorf("failed to set menu active flag: %w", err)
	}

	return nil
}

// DeactivateOthers clears is_active on every menu of the restaurant except keepID.
func (r *menuRepository) DeactivateOthers(ctx context.Context, q Querier, restaurantID, keepID int64) (int64, error) {
	query := `
		UPDATE menus
		SET is_active = FALSE, updated_at = NOW()
		WHERE restaurant_id = $1 AND id <> $2 AND is_active
	`

	tag, err := q.Exec(ctx, query, restaurantID, keepID)
	if err != nil {
		r.logger.Error().Err(err).Int64("restaurant_id", restaurantID).Msg("failed to deactivate menus")
		return 0, fmt.Errorf("failed to deactivate menus: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the menu row.
func (r *menuRepository) Delete(ctx context.Context, q Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", id).Msg("failed to delete menu")
		return fmt.Errorf("failed to delete menu: %w", err)
	}

	return nil
}
