package service

import (
	"context"
	"time"

	"menuely/internal/model"
	"menuely/internal/money"
	"menuely/internal/notify"
	"menuely/internal/repository"
	"menuely/internal/saga"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var errNotEmployee = model.NewDomainError(model.KindForbidden, model.ErrCodeForbidden, "User is not employed by a restaurant")

// orderService implements OrderService.
type orderService struct {
	uow         repository.UnitOfWork
	runner      *saga.Runner
	orders      repository.OrderRepository
	products    repository.ProductRepository
	restaurants repository.RestaurantRepository
	notifier    notify.Notifier
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	uow repository.UnitOfWork,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	restaurants repository.RestaurantRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) OrderService {
	logger = logger.With().Str("service", "order").Logger()
	return &orderService{
		uow:         uow,
		runner:      saga.NewRunner(uow, logger),
		orders:      orders,
		products:    products,
		restaurants: restaurants,
		notifier:    notifier,
		now:         time.Now,
		logger:      logger,
	}
}

// CreateOrder re-derives every line total and the order total from the
// live product prices and persists the order only if the client's claims
// match exactly. All checks run before the first write.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest, user model.User) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.runner.Run(ctx, "create order", func(ctx context.Context, u *saga.Unit) error {
		restaurant, err := s.restaurants.GetByID(ctx, u.Tx, req.RestaurantID)
		if err != nil {
			return model.NewInternalError("failed to load restaurant", err)
		}
		if restaurant == nil {
			return model.ErrRestaurantNotFound
		}

		products, err := s.loadProducts(ctx, u, req)
		if err != nil {
			return err
		}

		lines, total, err := s.priceLines(req, products)
		if err != nil {
			return err
		}

		order = &model.Order{
			RestaurantID:    req.RestaurantID,
			UserID:          user.ID,
			TableID:         req.TableID,
			TotalPrice:      total,
			Currency:        products[req.OrderedProducts[0].ProductID].Currency,
			EmployerName:    restaurant.Name,
			CustomerName:    user.FullName(),
			OrderedProducts: lines,
		}
		if err := s.orders.Create(ctx, u.Tx, order); err != nil {
			return model.NewConflictError("failed to save order", err)
		}

		summary := model.OrderSummary{
			OrderID:      order.ID,
			RestaurantID: order.RestaurantID,
			TableID:      order.TableID,
			CustomerName: order.CustomerName,
			TotalPrice:   order.TotalPrice,
			Currency:     order.Currency,
			ItemCount:    len(order.OrderedProducts),
			CreatedAt:    order.CreatedAt,
		}
		u.AfterCommit("notify order created", func(ctx context.Context) error {
			s.notifier.OrderCreated(ctx, order.RestaurantID, summary)
			return nil
		})

		return nil
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("restaurant_id", req.RestaurantID).
			Int64("user_id", user.ID).
			Msg("order rejected")
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("restaurant_id", order.RestaurantID).
		Int("item_count", len(order.OrderedProducts)).
		Str("total_price", order.TotalPrice.StringFixed(money.Places)).
		Msg("order created successfully")

	return order, nil
}

// loadProducts loads every referenced product and checks each ordered line
// points at a product of the ordering restaurant. Unknown IDs fail the same
// check.
func (s *orderService) loadProducts(ctx context.Context, u *saga.Unit, req *model.CreateOrderRequest) (map[int64]model.Product, error) {
	seen := make(map[int64]bool, len(req.OrderedProducts))
	ids := make([]int64, 0, len(req.OrderedProducts))
	for _, line := range req.OrderedProducts {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	loaded, err := s.products.GetByIDs(ctx, u.Tx, ids)
	if err != nil {
		return nil, model.NewInternalError("failed to load products", err)
	}

	products := make(map[int64]model.Product, len(loaded))
	for _, p := range loaded {
		products[p.ID] = p
	}

	matches := 0
	for _, line := range req.OrderedProducts {
		if p, ok := products[line.ProductID]; ok && p.RestaurantID == req.RestaurantID {
			matches++
		}
	}
	if matches < len(req.OrderedProducts) {
		s.logger.Warn().
			Int64("restaurant_id", req.RestaurantID).
			Int("lines", len(req.OrderedProducts)).
			Int("matching", matches).
			Msg("ordered products from different restaurants")
		return nil, model.ErrForeignProducts
	}

	return products, nil
}

// priceLines checks every claimed line total and the claimed order total
// and builds the product snapshots.
func (s *orderService) priceLines(req *model.CreateOrderRequest, products map[int64]model.Product) ([]model.OrderedProduct, decimal.Decimal, error) {
	lines := make([]model.OrderedProduct, len(req.OrderedProducts))
	totals := make([]decimal.Decimal, len(req.OrderedProducts))

	for i, line := range req.OrderedProducts {
		p := products[line.ProductID]

		claimed := money.LineTotal(line.Price, line.Quantity)
		actual := money.LineTotal(p.Price, line.Quantity)
		if !money.Equal(claimed, actual) {
			s.logger.Warn().
				Int64("product_id", p.ID).
				Str("claimed", claimed.String()).
				Str("actual", actual.String()).
				Msg("line price mismatch")
			return nil, decimal.Zero, model.ErrLinePriceMismatch
		}

		totals[i] = actual
		lines[i] = model.OrderedProduct{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Quantity:    line.Quantity,
			Price:       actual,
			ImageURL:    p.ImageURL(),
		}
	}

	total := money.Sum(totals...)
	if !money.Equal(total, req.TotalPrice) {
		s.logger.Warn().
			Str("claimed", req.TotalPrice.String()).
			Str("actual", total.String()).
			Msg("total price mismatch")
		return nil, decimal.Zero, model.ErrTotalPriceMismatch
	}

	return lines, total, nil
}

// AcceptOrder is a single-row update and needs no compensation.
func (s *orderService) AcceptOrder(ctx context.Context, id int64, employee model.User) error {
	if employee.EmployerID == nil {
		return errNotEmployee
	}

	reader := s.uow.Reader()
	order, err := s.orders.GetByID(ctx, reader, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return model.NewInternalError("failed to get order", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}
	if order.RestaurantID != *employee.EmployerID {
		s.logger.Warn().
			Int64("order_id", id).
			Int64("employee_id", employee.ID).
			Msg("employee accepting order of another restaurant")
		return model.ErrForbidden
	}

	if err := s.orders.Accept(ctx, reader, id, employee.FullName(), s.now().UTC()); err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to accept order")
		return model.NewConflictError("failed to accept order", err)
	}

	s.logger.Info().
		Int64("order_id", id).
		Int64("employee_id", employee.ID).
		Msg("order accepted")

	return nil
}

// GetUserOrder retrieves an order the user placed.
func (s *orderService) GetUserOrder(ctx context.Context, id int64, user model.User) (*model.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, model.ErrForbidden
	}
	return order, nil
}

// ListUserOrders retrieves the orders the user placed.
func (s *orderService) ListUserOrders(ctx context.Context, user model.User) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, s.uow.Reader(), user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list orders")
		return nil, model.NewInternalError("failed to list orders", err)
	}
	return orders, nil
}

// GetRestaurantOrder retrieves an order of the employee's restaurant.
func (s *orderService) GetRestaurantOrder(ctx context.Context, id int64, employee model.User) (*model.Order, error) {
	if employee.EmployerID == nil {
		return nil, errNotEmployee
	}
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.RestaurantID != *employee.EmployerID {
		return nil, model.ErrForbidden
	}
	return order, nil
}

// ListRestaurantOrders retrieves the orders of the employee's restaurant.
func (s *orderService) ListRestaurantOrders(ctx context.Context, employee model.User) ([]model.Order, error) {
	if employee.EmployerID == nil {
		return nil, errNotEmployee
	}
	orders, err := s.orders.ListByRestaurant(ctx, s.uow.Reader(), *employee.EmployerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("restaurant_id", *employee.EmployerID).Msg("failed to list orders")
		return nil, model.NewInternalError("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) getOrder(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, s.uow.Reader(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, model.NewInternalError("failed to get order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is required")
	}
	if req.RestaurantID <= 0 {
		return model.NewValidationError("restaurantId is required")
	}
	if req.TableID <= 0 {
		return model.NewValidationError("tableId must be a positive table number")
	}
	if len(req.OrderedProducts) == 0 {
		return model.NewValidationError("order must contain at least one product")
	}

	for i, line := range req.OrderedProducts {
		if line.ProductID <= 0 {
			return model.NewValidationError("line %d: orderedProductId is required", i)
		}
		if line.Quantity <= 0 {
			s.logger.Warn().
				Int("line", i).
				Int64("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
