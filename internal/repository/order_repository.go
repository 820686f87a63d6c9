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

const orderColumns = `id, restaurant_id, user_id, table_id, total_price, currency, employer_name,
	customer_name, employee_name, accepted_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.UserID, &o.TableID, &o.TotalPrice, &o.Currency,
		&o.EmployerName, &o.CustomerName, &o.EmployeeName, &o.AcceptedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts the order, then its ordered products in one batch.
func (r *orderRepository) Create(ctx context.Context, q Querier, order *model.Order) error {
	query := `
		INSERT INTO orders (restaurant_id, user_id, table_id, total_price, currency, employer_name, customer_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		order.RestaurantID, order.UserID, order.TableID, order.TotalPrice,
		order.Currency, order.EmployerName, order.CustomerName,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("restaurant_id", order.RestaurantID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.createOrderedProducts(ctx, q, order); err != nil {
		return err
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Int("items", len(order.OrderedProducts)).
		Msg("order created successfully")

	return nil
}

func (r *orderRepository) createOrderedProducts(ctx context.Context, q Querier, order *model.Order) error {
	if len(order.OrderedProducts) == 0 {
		return nil
	}

	query := `
		INSERT INTO ordered_products (order_id, product_id, name, description, quantity, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for i := range order.OrderedProducts {
		op := &order.OrderedProducts[i]
		op.OrderID = order.ID
		batch.Queue(query, op.OrderID, op.ProductID, op.Name, op.Description, op.Quantity, op.Price, op.ImageURL)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range order.OrderedProducts {
		op := &order.OrderedProducts[i]
		if err := results.QueryRow().Scan(&op.ID, &op.CreatedAt); err != nil {
			r.logger.Error().
				Err(err).
				Int64("order_id", order.ID).
				Int64("product_id", op.ProductID).
				Msg("failed to create ordered product")
			return fmt.Errorf("failed to create ordered product: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order by its ID along with its ordered products.
func (r *orderRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachOrderedProducts(ctx, q, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// ListByUser retrieves the orders a user placed, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, q Querier, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, query, userID)
}

// ListByRestaurant retrieves the orders of a restaurant, newest first.
func (r *orderRepository) ListByRestaurant(ctx context.Context, q Querier, restaurantID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, query, restaurantID)
}

func (r *orderRepository) list(ctx context.Context, q Querier, query string, arg int64) ([]model.Order, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	if err := r.attachOrderedProducts(ctx, q, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachOrderedProducts loads the snapshots of all orders with one query.
func (r *orderRepository) attachOrderedProducts(ctx context.Context, q Querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].OrderedProducts = []model.OrderedProduct{}
	}

	query := `
		SELECT id, order_id, product_id, name, description, quantity, price, image_url, created_at
		FROM ordered_products
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(ids)).Msg("failed to query ordered products")
		return fmt.Errorf("failed to query ordered products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op model.OrderedProduct
		err := rows.Scan(&op.ID, &op.OrderID, &op.ProductID, &op.Name, &op.Description,
			&op.Quantity, &op.Price, &op.ImageURL, &op.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan ordered product row")
			return fmt.Errorf("failed to scan ordered product: %w", err)
		}
		i := index[op.OrderID]
		orders[i].OrderedProducts = append(orders[i].OrderedProducts, op)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating ordered product rows")
		return fmt.Errorf("error iterating ordered products: %w", err)
	}

	return nil
}

// Accept stamps the accepting employee on the order. Re-acceptance overwrites.
func (r *orderRepository) Accept(ctx context.Context, q Querier, id int64, employeeName string, acceptedAt time.Time) error {
	query := `
		UPDATE orders
		SET employee_name = $2, accepted_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, employeeName, acceptedAt)
	if err == nil {
		err = affected(tag.RowsAffected())
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to accept order")
		return fmt.Errorf("failed to accept order: %w", err)
	}

	return nil
}
