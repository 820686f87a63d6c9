package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const categorySelect = `
	SELECT c.id, c.menu_id, c.restaurant_id, c.name, c.currency, c.image_id, c.created_at, c.updated_at,
	       i.name, i.url, i.created_at
	FROM categories c
	LEFT JOIN images i ON i.id = c.image_id
`

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// joinedImage holds the nullable image columns of a LEFT JOIN.
type joinedImage struct {
	name      *string
	url       *string
	createdAt *time.Time
}

func (j joinedImage) image(id *int64) *model.Image {
	if id == nil || j.name == nil {
		return nil
	}
	img := &model.Image{ID: *id, Name: *j.name}
	if j.url != nil {
		img.URL = *j.url
	}
	if j.createdAt != nil {
		img.CreatedAt = *j.createdAt
	}
	return img
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var (
		c   model.Category
		img joinedImage
	)
	err := row.Scan(&c.ID, &c.MenuID, &c.RestaurantID, &c.Name, &c.Currency, &c.ImageID,
		&c.CreatedAt, &c.UpdatedAt, &img.name, &img.url, &img.createdAt)
	if err != nil {
		return nil, err
	}
	c.Image = img.image(c.ImageID)
	return &c, nil
}

// Create inserts a category and fills in its generated fields.
func (r *categoryRepository) Create(ctx context.Context, q Querier, category *model.Category) error {
	query := `
		INSERT INTO categories (menu_id, restaurant_id, name, currency, image_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, category.MenuID, category.RestaurantID, category.Name, category.Currency, category.ImageID).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", category.MenuID).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().Int64("category_id", category.ID).Msg("category created successfully")
	return nil
}

// GetByID retrieves a category by its ID.
func (r *categoryRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.Category, error) {
	category, err := scanCategory(q.QueryRow(ctx, categorySelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("category_id", id).Msg("category not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return category, nil
}

// ListByMenu retrieves all categories of a menu.
func (r *categoryRepository) ListByMenu(ctx context.Context, q Querier, menuID int64) ([]model.Category, error) {
	rows, err := q.Query(ctx, categorySelect+` WHERE c.menu_id = $1 ORDER BY c.id`, menuID)
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", menuID).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

const updateCategoryQuery = `
	UPDATE categories
	SET name = $2, currency = $3, image_id = $4, updated_at = NOW()
	WHERE id = $1
`

// Update persists name, currency and image_id.
func (r *categoryRepository) Update(ctx context.Context, q Querier, category *model.Category) error {
	tag, err := q.Exec(ctx, updateCategoryQuery, category.ID, category.Name, category.Currency, category.ImageID)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", category.ID).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// UpdateAll persists every category in one batch.
func (r *categoryRepository) UpdateAll(ctx context.Context, q Querier, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(updateCategoryQuery, c.ID, c.Name, c.Currency, c.ImageID)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range categories {
		tag, err := results.Exec()
		if err == nil {
			err = affected(tag.RowsAffected())
		}
		if err != nil {
			r.logger.Error().
				Err(err).
				Int64("category_id", categories[i].ID).
				Msg("failed to update category")
			return fmt.Errorf("failed to update category %d: %w", categories[i].ID, err)
		}
	}

	return nil
}

// Delete removes the category row.
func (r *categoryRepository) Delete(ctx context.Context, q Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
