package handler

import (
	"net/http"
	"strings"

	"stok/internal/model"
	"stok/internal/service"

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

// List handles GET /api/v1/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	featured, err := parseBool(q.Get("featured"), "featured")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	updatedSince, err := parseTime(q.Get("updatedSince"), "updatedSince")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.ProductFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		Category:     strings.TrimSpace(q.Get("category")),
		Featured:     featured,
		UpdatedSince: updatedSince,
		Page:         model.NewPage(q.Get("page"), q.Get("pageSize")),
	}

	products, meta, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeList(w, meta, products)
}

// Get handles GET /api/v1/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, product)
}

// Update handles PUT /api/v1/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
