package handler

import (
	"net/http"

	"menuely/internal/model"
	"menuely/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

// Create handles multipart POST /api/categories requests.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurant, err := requireRestaurant(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	req, err := h.createRequest(w, r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req, restaurant)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, category, h.logger)
}

func (h *CategoryHandler) createRequest(w http.ResponseWriter, r *http.Request) (*model.CreateCategoryRequest, error) {
	if err := parseMultipart(w, r); err != nil {
		return nil, err
	}

	menuID, err := formID(r, "menuId")
	if err != nil {
		return nil, err
	}
	image, err := formImage(r, "image")
	if err != nil {
		return nil, err
	}

	req := &model.CreateCategoryRequest{MenuID: menuID, Image: image}
	if name := formString(r, "name"); name != nil {
		req.Name = *name
	}
	return req, nil
}

// Update handles multipart PATCH /api/categories/{id} requests.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	image, err := formImage(r, "image")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	req := &model.UpdateCategoryRequest{
		Name:  formString(r, "name"),
		Image: image,
	}
	if err := h.service.UpdateCategory(r.Context(), id, req, restaurant); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/categories/{id} requests.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteCategory(r.Context(), id, restaurant); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetByID handles GET /api/categories/{id} requests.
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, category, h.logger)
}

// List handles GET /api/categories?menuId= requests.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	menuID, err := queryID(r, "menuId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	categories, err := h.service.ListCategories(r.Context(), menuID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories, h.logger)
}
