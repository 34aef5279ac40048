package handler

import (
	"context"
	"io"

	"stok/internal/model"
	"stok/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, model.PageMeta, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.PageMeta), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Get(1).(model.PageMeta), args.Error(2)
}

func (m *MockProductService) Get(ctx context.Context, identifier string) (*model.Product, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, identifier string, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, identifier, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, model.PageMeta, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.PageMeta), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Get(1).(model.PageMeta), args.Error(2)
}

func (m *MockOrderService) Get(ctx context.Context, identifier string) (*model.Order, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, identifier string, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, identifier, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

// MockDealerService is a mock implementation of DealerService.
type MockDealerService struct {
	mock.Mock
}

func (m *MockDealerService) List(ctx context.Context, filter model.DealerFilter) ([]model.Dealer, model.PageMeta, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.PageMeta), args.Error(2)
	}
	return args.Get(0).([]model.Dealer), args.Get(1).(model.PageMeta), args.Error(2)
}

func (m *MockDealerService) Get(ctx context.Context, identifier string, withSummary bool) (*model.Dealer, error) {
	args := m.Called(ctx, identifier, withSummary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dealer), args.Error(1)
}

func (m *MockDealerService) Create(ctx context.Context, req *model.DealerRequest) (*model.Dealer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dealer), args.Error(1)
}

func (m *MockDealerService) Update(ctx context.Context, identifier string, req *model.DealerRequest) (*model.Dealer, error) {
	args := m.Called(ctx, identifier, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dealer), args.Error(1)
}

func (m *MockDealerService) Delete(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

func (m *MockDealerService) UploadDocument(ctx context.Context, identifier string, slot model.DocumentSlot, upload service.Upload) (*model.Dealer, error) {
	// The body is drained here so tests can assert on what reached the service.
	content, _ := io.ReadAll(upload.Body)
	args := m.Called(ctx, identifier, slot, upload.Filename, upload.ContentType, string(content))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dealer), args.Error(1)
}

func (m *MockDealerService) OrdersSummary(ctx context.Context, dealerCode string) (*model.OrdersSummary, error) {
	args := m.Called(ctx, dealerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrdersSummary), args.Error(1)
}
