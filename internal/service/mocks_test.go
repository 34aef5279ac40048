package service

import (
	"context"
	"io"

	"stok/internal/events"
	"stok/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProductRepository) GetByCode(ctx context.Context, code string) (*model.Product, error) {
	args := m.Called(ctx, code)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProductRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error) {
	args := m.Called(ctx, tx, id)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProductRepository) LockByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Product, error) {
	args := m.Called(ctx, tx, code)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProductRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	args := m.Called(ctx, tx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, tx pgx.Tx, id int64, stockCount int) error {
	args := m.Called(ctx, tx, id, stockCount)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func productArg(args mock.Arguments, i int) *model.Product {
	if p, ok := args.Get(i).(*model.Product); ok {
		return p
	}
	return nil
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	return orderArg(args, 0), args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	args := m.Called(ctx, orderNumber)
	return orderArg(args, 0), args.Error(1)
}

func (m *MockOrderRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	return orderArg(args, 0), args.Error(1)
}

func (m *MockOrderRepository) LockByNumber(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error) {
	args := m.Called(ctx, tx, orderNumber)
	return orderArg(args, 0), args.Error(1)
}

func (m *MockOrderRepository) NumberExists(ctx context.Context, tx pgx.Tx, orderNumber string, excludeID int64) (bool, error) {
	args := m.Called(ctx, tx, orderNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByDealerCode(ctx context.Context, dealerCode string) (int, error) {
	args := m.Called(ctx, dealerCode)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) SummaryByDealerCode(ctx context.Context, dealerCode string) (*model.OrdersSummary, error) {
	args := m.Called(ctx, dealerCode)
	if s, ok := args.Get(0).(*model.OrdersSummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func orderArg(args mock.Arguments, i int) *model.Order {
	if o, ok := args.Get(i).(*model.Order); ok {
		return o
	}
	return nil
}

// MockDealerRepository is a mock implementation of DealerRepository.
type MockDealerRepository struct {
	mock.Mock
}

func (m *MockDealerRepository) List(ctx context.Context, filter model.DealerFilter) ([]model.Dealer, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Dealer), args.Int(1), args.Error(2)
}

func (m *MockDealerRepository) GetByID(ctx context.Context, id int64) (*model.Dealer, error) {
	args := m.Called(ctx, id)
	return dealerArg(args, 0), args.Error(1)
}

func (m *MockDealerRepository) GetByCode(ctx context.Context, code string) (*model.Dealer, error) {
	args := m.Called(ctx, code)
	return dealerArg(args, 0), args.Error(1)
}

func (m *MockDealerRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDealerRepository) Create(ctx context.Context, dealer *model.Dealer) error {
	args := m.Called(ctx, dealer)
	return args.Error(0)
}

func (m *MockDealerRepository) Update(ctx context.Context, dealer *model.Dealer) error {
	args := m.Called(ctx, dealer)
	return args.Error(0)
}

func (m *MockDealerRepository) UpdateDocumentPath(ctx context.Context, id int64, slot model.DocumentSlot, path string) (*model.Dealer, error) {
	args := m.Called(ctx, id, slot, path)
	return dealerArg(args, 0), args.Error(1)
}

func (m *MockDealerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func dealerArg(args mock.Arguments, i int) *model.Dealer {
	if d, ok := args.Get(i).(*model.Dealer); ok {
		return d
	}
	return nil
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStore is a mock implementation of storage.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, dir, originalName, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, dir, originalName, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
