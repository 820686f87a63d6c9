package handler

import (
	"context"
	"net/http"

	"menuely/internal/model"
	"menuely/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req, user)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order, h.logger)
}

// Accept handles POST /api/orders/{id}/accept requests.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	employee, err := requireUser(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.AcceptOrder(r.Context(), id, employee); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetUserOrder handles GET /api/orders/{id}/user requests.
func (h *OrderHandler) GetUserOrder(w http.ResponseWriter, r *http.Request) {
	h.getOrder(w, r, h.service.GetUserOrder)
}

// GetRestaurantOrder handles GET /api/orders/{id}/restaurant requests.
func (h *OrderHandler) GetRestaurantOrder(w http.ResponseWriter, r *http.Request) {
	h.getOrder(w, r, h.service.GetRestaurantOrder)
}

// ListUserOrders handles GET /api/orders/user requests.
func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, h.service.ListUserOrders)
}

// ListRestaurantOrders handles GET /api/orders/restaurant requests.
func (h *OrderHandler) ListRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, h.service.ListRestaurantOrders)
}

type getOrderFunc func(ctx context.Context, id int64, user model.User) (*model.Order, error)

type listOrdersFunc func(ctx context.Context, user model.User) ([]model.Order, error)

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, get getOrderFunc) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := get(r.Context(), id, user)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order, h.logger)
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request, list listOrdersFunc) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := list(r.Context(), user)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders, h.logger)
}
