package repository

import (
	"context"

	"stok/internal/model"

	"github.com/jackc/pgx/v5"
)

// Lookups return (nil, nil) when no row matches.

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// List returns one page of products and the total match count.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)

	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByCode(ctx context.Context, code string) (*model.Product, error)

	// LockByID and LockByCode read the row with SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error)
	LockByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Product, error)

	// CodeExists reports whether another product (id != excludeID) uses code.
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)

	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, tx pgx.Tx, product *model.Product) error

	// SetStock writes the stock count of a locked row.
	SetStock(ctx context.Context, tx pgx.Tx, id int64, stockCount int) error

	// Delete removes a product. It reports false when no row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)

	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error)
	LockByNumber(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error)

	// NumberExists reports whether another order (id != excludeID) uses orderNumber.
	NumberExists(ctx context.Context, tx pgx.Tx, orderNumber string, excludeID int64) (bool, error)

	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// Update writes the header fields. Items and totals are never touched.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	Delete(ctx context.Context, tx pgx.Tx, id int64) error

	CountByDealerCode(ctx context.Context, dealerCode string) (int, error)
	SummaryByDealerCode(ctx context.Context, dealerCode string) (*model.OrdersSummary, error)
}

// DealerRepository defines the interface for dealer data access operations.
type DealerRepository interface {
	List(ctx context.Context, filter model.DealerFilter) ([]model.Dealer, int, error)

	GetByID(ctx context.Context, id int64) (*model.Dealer, error)
	GetByCode(ctx context.Context, code string) (*model.Dealer, error)

	// CodeExists reports whether another dealer (id != excludeID) uses code.
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)

	Create(ctx context.Context, dealer *model.Dealer) error
	Update(ctx context.Context, dealer *model.Dealer) error

	// UpdateDocumentPath stores the file path of one document slot.
	UpdateDocumentPath(ctx context.Context, id int64, slot model.DocumentSlot, path string) (*model.Dealer, error)

	// Delete removes a dealer. It reports false when no row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
