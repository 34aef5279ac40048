package service

import (
	"context"
	"io"

	"stok/internal/model"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List returns one page of products and its metadata.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, model.PageMeta, error)

	// Get retrieves a product by numeric ID or stock code.
	Get(ctx context.Context, identifier string) (*model.Product, error)

	// Create validates the request, derives the stock code and variants and
	// stores the product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update merges the request into the stored product and regenerates
	// its stock code and variants.
	Update(ctx context.Context, identifier string, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product. Existing orders keep their snapshots.
	Delete(ctx context.Context, identifier string) error
}

// OrderService defines operations for dealer order intake.
type OrderService interface {
	// List returns one page of orders and its metadata.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, model.PageMeta, error)

	// Get retrieves an order by numeric ID or order number.
	Get(ctx context.Context, identifier string) (*model.Order, error)

	// Create reserves stock for every line and stores the order in a
	// single transaction.
	Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// Update changes header fields. Items and totals stay as created.
	Update(ctx context.Context, identifier string, req *model.OrderRequest) (*model.Order, error)

	// Delete returns the ordered quantities to stock and removes the order.
	Delete(ctx context.Context, identifier string) error
}

// DealerService defines operations for the dealer registry.
type DealerService interface {
	// List returns one page of dealers, optionally with order summaries.
	List(ctx context.Context, filter model.DealerFilter) ([]model.Dealer, model.PageMeta, error)

	// Get retrieves a dealer by numeric ID or code.
	Get(ctx context.Context, identifier string, withSummary bool) (*model.Dealer, error)

	// Create registers a dealer application. It always starts pending and
	// inactive.
	Create(ctx context.Context, req *model.DealerRequest) (*model.Dealer, error)

	Update(ctx context.Context, identifier string, req *model.DealerRequest) (*model.Dealer, error)

	// Delete removes a dealer that has no orders.
	Delete(ctx context.Context, identifier string) error

	// UploadDocument stores a legal document and records it on the dealer.
	UploadDocument(ctx context.Context, identifier string, slot model.DocumentSlot, upload Upload) (*model.Dealer, error)

	// OrdersSummary aggregates the orders placed under a dealer code.
	OrdersSummary(ctx context.Context, dealerCode string) (*model.OrdersSummary, error)
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// findByIdentifier resolves a path identifier: numeric values are IDs,
// anything else is a code.
func findByIdentifier[T any](
	ctx context.Context,
	identifier string,
	byID func(context.Context, int64) (*T, error),
	byCode func(context.Context, string) (*T, error),
) (*T, error) {
	if id, ok := model.ParseIdentifier(identifier); ok {
		return byID(ctx, id)
	}
	return byCode(ctx, identifier)
}
