package repository

import (
	"context"
	"errors"
	"fmt"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// imageRepository implements the ImageRepository interface using PostgreSQL.
type imageRepository struct {
	logger zerolog.Logger
}

// NewImageRepository creates a new PostgreSQL-backed image repository.
func NewImageRepository(logger zerolog.Logger) ImageRepository {
	return &imageRepository{
		logger: logger.With().Str("repository", "image").Logger(),
	}
}

const insertImageQuery = `
	INSERT INTO images (name, url, menu_id, table_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
`

// Create inserts an image and fills in its generated fields.
func (r *imageRepository) Create(ctx context.Context, q Querier, image *model.Image) error {
	err := q.QueryRow(ctx, insertImageQuery, image.Name, image.URL, image.MenuID, image.TableID).
		Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("blob_key", image.Name).Msg("failed to create image")
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

// CreateBatch inserts all images in one round trip and fills in their IDs.
func (r *imageRepository) CreateBatch(ctx context.Context, q Querier, images []model.Image) error {
	if len(images) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, img := range images {
		batch.Queue(insertImageQuery, img.Name, img.URL, img.MenuID, img.TableID)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range images {
		err := results.QueryRow().Scan(&images[i].ID, &images[i].CreatedAt)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("blob_key", images[i].Name).
				Msg("failed to create image")
			return fmt.Errorf("failed to create image: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(images)).Msg("images created successfully")
	return nil
}

// GetByID retrieves an image by its ID.
func (r *imageRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.Image, error) {
	query := `SELECT id, name, url, menu_id, table_id, created_at FROM images WHERE id = $1`

	var img model.Image
	err := q.QueryRow(ctx, query, id).Scan(&img.ID, &img.Name, &img.URL, &img.MenuID, &img.TableID, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("image_id", id).Msg("failed to query image")
		return nil, fmt.Errorf("failed to query image: %w", err)
	}

	return &img, nil
}

// ListByMenu retrieves the QR images of a menu ordered by table.
func (r *imageRepository) ListByMenu(ctx context.Context, q Querier, menuID int64) ([]model.Image, error) {
	query := `
		SELECT id, name, url, menu_id, table_id, created_at
		FROM images
		WHERE menu_id = $1
		ORDER BY table_id
	`

	rows, err := q.Query(ctx, query, menuID)
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", menuID).Msg("failed to query menu images")
		return nil, fmt.Errorf("failed to query menu images: %w", err)
	}
	defer rows.Close()

	images := []model.Image{}
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.ID, &img.Name, &img.URL, &img.MenuID, &img.TableID, &img.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan image row")
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating image rows")
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// Delete removes the image row.
func (r *imageRepository) Delete(ctx context.Context, q Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("image_id", id).Msg("failed to delete image")
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// DeleteByMenu removes every QR image row of a menu.
func (r *imageRepository) DeleteByMenu(ctx context.Context, q Querier, menuID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM images WHERE menu_id = $1`, menuID)
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_id", menuID).Msg("failed to delete menu images")
		return 0, fmt.Errorf("failed to delete menu images: %w", err)
	}

	return tag.RowsAffected(), nil
}
