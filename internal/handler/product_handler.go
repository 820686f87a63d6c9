package handler

import (
	"net/http"

	"menuely/internal/model"
	"menuely/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles multipart POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	product, err := h.service.CreateProduct(r.Context(), req, restaurant)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product, h.logger)
}

func (h *ProductHandler) createRequest(w http.ResponseWriter, r *http.Request) (*model.CreateProductRequest, error) {
	if err := parseMultipart(w, r); err != nil {
		return nil, err
	}

	categoryID, err := formID(r, "categoryId")
	if err != nil {
		return nil, err
	}
	price, err := formDecimal(r, "price")
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, model.NewValidationError("price is required")
	}
	image, err := formImage(r, "image")
	if err != nil {
		return nil, err
	}

	req := &model.CreateProductRequest{
		CategoryID: categoryID,
		Price:      *price,
		Image:      image,
	}
	if name := formString(r, "name"); name != nil {
		req.Name = *name
	}
	if description := formString(r, "description"); description != nil {
		req.Description = *description
	}
	return req, nil
}

// Update handles multipart PATCH /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	price, err := formDecimal(r, "price")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	image, err := formImage(r, "image")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	req := &model.UpdateProductRequest{
		Name:        formString(r, "name"),
		Description: formString(r, "description"),
		Price:       price,
		Image:       image,
	}
	if err := h.service.UpdateProduct(r.Context(), id, req, restaurant); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteProduct(r.Context(), id, restaurant); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product, h.logger)
}

// List handles GET /api/products?categoryId= requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "categoryId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	products, err := h.service.ListProducts(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products, h.logger)
}
