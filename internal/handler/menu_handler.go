package handler

import (
	"net/http"

	"menuely/internal/model"
	"menuely/internal/service"

	"github.com/rs/zerolog"
)

// MenuHandler handles menu-related HTTP requests.
type MenuHandler struct {
	service service.MenuService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

// Create handles POST /api/menus requests.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurant, err := requireRestaurant(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CreateMenuRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	menu, err := h.service.CreateMenu(r.Context(), &req, restaurant)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, menu, h.logger)
}

// Update handles PATCH /api/menus/{id} requests.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurant, err := requireRestaurant(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateMenuRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.UpdateMenu(r.Context(), id, &req, restaurant); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/menus/{id} requests.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurant, err := requireRestaurant(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.DeleteMenu(r.Context(), id, restaurant); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetByID handles GET /api/menus/{id} requests.
func (h *MenuHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	menu, err := h.service.GetMenu(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, menu, h.logger)
}

// List handles GET /api/menus?restaurantId= requests.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := queryID(r, "restaurantId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	menus, err := h.service.ListMenus(r.Context(), restaurantID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, menus, h.logger)
}
