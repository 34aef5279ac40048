package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stok/internal/middleware"
	"stok/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProduct() *model.Product {
	return &model.Product{
		ID:            7,
		StockCode:     "M-KBOT-S-37",
		Name:          "Kadın Bot",
		Category:      "Ayakkabı",
		ConsumerPrice: decimal.RequireFromString("1299.90"),
		DealerPrice:   decimal.RequireFromString("899.50"),
		StockCount:    40,
		Sizes:         []string{"37", "38"},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Query parameters become the filter", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		meta := model.PageMeta{Page: 2, PageSize: 10, TotalItems: 11, TotalPages: 2}

		mockService.On("List", mock.Anything, mock.MatchedBy(func(f model.ProductFilter) bool {
			return f.Search == "bot" &&
				f.Category == "Ayakkabı" &&
				f.Featured != nil && *f.Featured &&
				f.UpdatedSince != nil && f.UpdatedSince.Equal(since) &&
				f.Page == model.Page{Page: 2, PageSize: 10}
		})).Return([]model.Product{*testProduct()}, meta, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/products?search=bot&category=Ayakkab%C4%B1&featured=true&updatedSince=2026-01-01&page=2&pageSize=10", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp model.ListResponse[model.Product]
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, meta, resp.Meta)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "M-KBOT-S-37", resp.Data[0].StockCode)
		mockService.AssertExpectations(t)
	})

	t.Run("Empty page renders an empty array", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		mockService.On("List", mock.Anything, mock.Anything).
			Return(nil, model.PageMeta{Page: 1, PageSize: 50, TotalPages: 1}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("Invalid featured flag", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?featured=maybe", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"featured must be true or false"}, decodeError(t, w).Details)
		mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("Invalid updatedSince", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?updatedSince=yesterday", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestProductHandler_Get(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			mockReturn:     testProduct(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found",
			mockError:      model.NewNotFoundError("product not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
		},
		{
			name:           "Internal error is not leaked",
			mockError:      errors.New("connection refused on 10.0.0.3"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			mockService.On("Get", mock.Anything, "M-KBOT-S-37").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/M-KBOT-S-37", nil)
			req.SetPathValue("id", "M-KBOT-S-37")
			w := httptest.NewRecorder()

			handler.Get(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode == "" {
				var resp model.DataResponse[model.Product]
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, int64(7), resp.Data.ID)
				assert.True(t, decimal.RequireFromString("899.5").Equal(resp.Data.DealerPrice))
				return
			}

			body := w.Body.String()
			assert.NotContains(t, body, "10.0.0.3")
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *model.ProductRequest) bool {
			return req.Name != nil && *req.Name == "Kadın Bot" &&
				req.Sizes != nil && len(*req.Sizes) == 2 &&
				req.DealerPrice != nil && req.DealerPrice.IsSet()
		})).Return(testProduct(), nil)

		body := `{"name":"Kadın Bot","category":"Ayakkabı","consumerPrice":1299.90,"dealerPrice":"899,50","sizes":"37, 38"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		mockService.AssertExpectations(t)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("{invalid"))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Empty body", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", http.NoBody)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})

	t.Run("Validation error carries details and correlation id", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.NewValidationError("name is required", "category is required"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(`{}`))
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		w := httptest.NewRecorder()

		middleware.RequestID(http.HandlerFunc(handler.Create)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodeValidation, resp.Code)
		assert.Equal(t, []string{"name is required", "category is required"}, resp.Details)
		assert.Equal(t, "req-123", resp.CorrelationID)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.NewConflictError("stock code already in use", "stockCode must be unique"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(`{"name":"x"}`))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, model.ErrCodeConflict, decodeError(t, w).Code)
	})
}

func TestProductHandler_Update(t *testing.T) {
	logger := zerolog.Nop()

	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger)

	updated := testProduct()
	updated.StockCount = 12
	mockService.On("Update", mock.Anything, "7", mock.MatchedBy(func(req *model.ProductRequest) bool {
		return req.StockCount != nil && req.Name == nil
	})).Return(updated, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/7", bytes.NewBufferString(`{"stockCount":"12"}`))
	req.SetPathValue("id", "7")
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp model.DataResponse[model.Product]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 12, resp.Data.StockCount)
	mockService.AssertExpectations(t)
}

func TestProductHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Success", expectedStatus: http.StatusNoContent},
		{name: "Not found", mockError: model.NewNotFoundError("product not found"), expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			mockService.On("Delete", mock.Anything, "7").Return(tt.mockError)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/7", nil)
			req.SetPathValue("id", "7")
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
