package repository

import (
	"context"
	"errors"
	"fmt"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const productSelect = `
	SELECT p.id, p.category_id, p.restaurant_id, p.name, p.description, p.price, p.currency, p.image_id,
	       p.created_at, p.updated_at, i.name, i.url, i.created_at
	FROM products p
	LEFT JOIN images i ON i.id = p.image_id
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(logger zerolog.Logger) ProductRepository {
	return &productRepository{
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p   model.Product
		img joinedImage
	)
	err := row.Scan(&p.ID, &p.CategoryID, &p.RestaurantID, &p.Name, &p.Description, &p.Price,
		&p.Currency, &p.ImageID, &p.CreatedAt, &p.UpdatedAt, &img.name, &img.url, &img.createdAt)
	if err != nil {
		return nil, err
	}
	p.Image = img.image(p.ImageID)
	return &p, nil
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Create inserts a product and fills in its generated fields.
func (r *productRepository) Create(ctx context.Context, q Querier, product *model.Product) error {
	query := `
		INSERT INTO products (category_id, restaurant_id, name, description, price, currency, image_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		product.CategoryID, product.RestaurantID, product.Name, product.Description,
		product.Price, product.Currency, product.ImageID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", product.CategoryID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Int64("product_id", product.ID).Msg("product created successfully")
	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.Product, error) {
	p, err := scanProduct(q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, q Querier, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	rows, err := q.Query(ctx, productSelect+` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return r.collect(rows)
}

// ListByCategory retrieves all products of a category.
func (r *productRepository) ListByCategory(ctx context.Context, q Querier, categoryID int64) ([]model.Product, error) {
	rows, err := q.Query(ctx, productSelect+` WHERE p.category_id = $1 ORDER BY p.id`, categoryID)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return r.collect(rows)
}

const updateProductQuery = `
	UPDATE products
	SET name = $2, description = $3, price = $4, currency = $5, image_id = $6, updated_at = NOW()
	WHERE id = $1
`

// Update persists name, description, price, currency and image_id.
func (r *productRepository) Update(ctx context.Context, q Querier, product *model.Product) error {
	tag, err := q.Exec(ctx, updateProductQuery,
		product.ID, product.Name, product.Description, product.Price, product.Currency, product.ImageID)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// UpdateAll persists every product in one batch.
func (r *productRepository) UpdateAll(ctx context.Context, q Querier, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(updateProductQuery, p.ID, p.Name, p.Description, p.Price, p.Currency, p.ImageID)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range products {
		tag, err := results.Exec()
		if err == nil {
			err = affected(tag.RowsAffected())
		}
		if err != nil {
			r.logger.Error().
				Err(err).
				Int64("product_id", products[i].ID).
				Msg("failed to update product")
			return fmt.Errorf("failed to update product %d: %w", products[i].ID, err)
		}
	}

	return nil
}

// Delete removes the product row.
func (r *productRepository) Delete(ctx context.Context, q Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
