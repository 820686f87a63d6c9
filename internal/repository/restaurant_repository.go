package repository

import (
	"context"
	"errors"
	"fmt"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const restaurantColumns = `id, email, name, description, country, city, address, postal_code, active_menu_id, created_at, updated_at`

// restaurantRepository implements the RestaurantRepository interface using PostgreSQL.
type restaurantRepository struct {
	logger zerolog.Logger
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(logger zerolog.Logger) RestaurantRepository {
	return &restaurantRepository{
		logger: logger.With().Str("repository", "restaurant").Logger(),
	}
}

func scanRestaurant(row pgx.Row) (*model.Restaurant, error) {
	var r model.Restaurant
	err := row.Scan(&r.ID, &r.Email, &r.Name, &r.Description, &r.Country, &r.City,
		&r.Address, &r.PostalCode, &r.ActiveMenuID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a restaurant and fills in its generated fields.
func (r *restaurantRepository) Create(ctx context.Context, q Querier, restaurant *model.Restaurant) error {
	query := `
		INSERT INTO restaurants (email, name, description, country, city, address, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		restaurant.Email, restaurant.Name, restaurant.Description, restaurant.Country,
		restaurant.City, restaurant.Address, restaurant.PostalCode,
	).Scan(&restaurant.ID, &restaurant.CreatedAt, &restaurant.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("email", restaurant.Email).Msg("failed to create restaurant")
		return fmt.Errorf("failed to create restaurant: %w", err)
	}

	return nil
}

// GetByID retrieves a restaurant by its ID.
func (r *restaurantRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	restaurant, err := scanRestaurant(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("restaurant_id", id).Msg("restaurant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("restaurant_id", id).Msg("failed to query restaurant")
		return nil, fmt.Errorf("failed to query restaurant: %w", err)
	}

	return restaurant, nil
}

// LockByID retrieves a restaurant with SELECT ... FOR UPDATE. Concurrent
// activations for the same restaurant serialize on this lock.
func (r *restaurantRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1 FOR UPDATE`

	restaurant, err := scanRestaurant(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("restaurant_id", id).Msg("failed to lock restaurant")
		return nil, fmt.Errorf("failed to lock restaurant: %w", err)
	}

	return restaurant, nil
}

// SetActiveMenu points the restaurant at menuID, or clears it when menuID is nil.
func (r *restaurantRepository) SetActiveMenu(ctx context.Context, q Querier, restaurantID int64, menuID *int64) error {
	query := `UPDATE restaurants SET active_menu_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, restaurantID, menuID)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("restaurant_id", restaurantID).Msg("failed to set active menu")
		return fmt.Errorf("failed to set active menu: %w", err)
	}

	return nil
}
