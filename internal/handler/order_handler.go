package handler

import (
	"net/http"
	"strings"

	"stok/internal/model"
	"stok/internal/service"

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

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	createdSince, err := parseTime(q.Get("createdSince"), "createdSince")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.OrderFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		Status:       strings.TrimSpace(q.Get("status")),
		DealerCode:   strings.TrimSpace(q.Get("dealerCode")),
		CreatedSince: createdSince,
		Page:         model.NewPage(q.Get("page"), q.Get("pageSize")),
	}

	orders, meta, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeList(w, meta, orders)
}

// Get handles GET /api/v1/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, order)
}

// Update handles PUT /api/v1/orders/{id}. Only header fields change.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// Delete handles DELETE /api/v1/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
