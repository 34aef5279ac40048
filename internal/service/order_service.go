package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"stok/internal/events"
	"stok/internal/model"
	"stok/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

var hundred = decimal.NewFromInt(100)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	publisher    events.Publisher
	numberPrefix string
	now          func() time.Time
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. numberPrefix starts
// generated order numbers when the order carries no dealer code.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
	numberPrefix string,
	logger zerolog.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if strings.TrimSpace(numberPrefix) == "" {
		numberPrefix = "ORD"
	}
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		publisher:    publisher,
		numberPrefix: strings.TrimSpace(numberPrefix),
		now:          time.Now,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// orderLine is a validated request line.
type orderLine struct {
	code      string
	quantity  int
	unitPrice *decimal.Decimal
	discount  *decimal.Decimal
	size      string
	color     string
}

// List returns one page of orders.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, model.PageMeta, error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, model.PageMeta{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, model.NewPageMeta(filter.Page, total), nil
}

// Get retrieves an order by ID or order number.
func (s *orderService) Get(ctx context.Context, identifier string) (*model.Order, error) {
	order, err := findByIdentifier(ctx, identifier, s.orderRepo.GetByID, s.orderRepo.GetByNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("order not found")
	}
	return order, nil
}

// Create reserves stock for every line and stores the order. Products are
// locked in stock code order so that concurrent orders touching the same
// products cannot deadlock.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (order *model.Order, err error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	email := strings.ToLower(model.Resolve(req.ContactEmail, ""))
	if email != "" && !model.ValidEmail(email) {
		return nil, model.NewValidationError("contactEmail must be a valid email address")
	}

	lines, err := parseOrderLines(req.Items)
	if err != nil {
		return nil, err
	}

	order = &model.Order{
		Status:       model.Resolve(req.Status, ""),
		DealerName:   model.Resolve(req.DealerName, ""),
		DealerCode:   model.Resolve(req.DealerCode, ""),
		ContactName:  model.Resolve(req.ContactName, ""),
		ContactEmail: email,
		ContactPhone: model.Resolve(req.ContactPhone, ""),
		Currency:     model.Resolve(req.Currency, ""),
		Notes:        model.Resolve(req.Notes, ""),
		Metadata:     normalizeMetadata(req.Metadata),
	}
	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}
	if order.Currency == "" {
		order.Currency = model.DefaultCurrency
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order.OrderNumber = model.Resolve(req.OrderNumber, "")
	if order.OrderNumber == "" {
		order.OrderNumber = s.generateNumber(order.DealerCode)
	}

	exists, err := s.orderRepo.NumberExists(ctx, tx, order.OrderNumber, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if exists {
		err = orderNumberConflict()
		return nil, err
	}

	products, err := s.lockProducts(ctx, tx, lines)
	if err != nil {
		return nil, err
	}

	order.Items = make([]model.OrderItem, 0, len(lines))
	order.TotalAmount = decimal.Zero
	for _, line := range lines {
		product := products[line.code]
		if err = product.DecrementStock(line.quantity); err != nil {
			return nil, err
		}

		item := priceLine(line, product, order.Currency)
		order.Items = append(order.Items, item)
		order.TotalQuantity += item.Quantity
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal)
	}

	for _, code := range sortedKeys(products) {
		product := products[code]
		if err = s.productRepo.SetStock(ctx, tx, product.ID, product.StockCount); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			err = orderNumberConflict()
			return nil, err
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Msg("order created successfully")

	s.publish(ctx, events.ActionCreated, order)
	return order, nil
}

// Update changes the header fields of an order. Items and totals are
// never recalculated.
func (s *orderService) Update(ctx context.Context, identifier string, req *model.OrderRequest) (order *model.Order, err error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.lock(ctx, tx, identifier)
	if err != nil {
		return nil, err
	}

	order.DealerName = model.Resolve(req.DealerName, order.DealerName)
	order.DealerCode = model.Resolve(req.DealerCode, order.DealerCode)
	order.ContactName = model.Resolve(req.ContactName, order.ContactName)
	order.ContactPhone = model.Resolve(req.ContactPhone, order.ContactPhone)
	order.Notes = model.Resolve(req.Notes, order.Notes)
	if currency := model.Resolve(req.Currency, ""); currency != "" {
		order.Currency = currency
	}
	if status := model.Resolve(req.Status, ""); status != "" {
		order.Status = status
	}
	if req.Metadata != nil {
		order.Metadata = normalizeMetadata(req.Metadata)
	}

	order.ContactEmail = strings.ToLower(model.Resolve(req.ContactEmail, order.ContactEmail))
	if order.ContactEmail != "" && !model.ValidEmail(order.ContactEmail) {
		err = model.NewValidationError("contactEmail must be a valid email address")
		return nil, err
	}

	if number := model.Resolve(req.OrderNumber, ""); number != "" && number != order.OrderNumber {
		exists, checkErr := s.orderRepo.NumberExists(ctx, tx, number, order.ID)
		if checkErr != nil {
			err = fmt.Errorf("failed to update order: %w", checkErr)
			return nil, err
		}
		if exists {
			err = orderNumberConflict()
			return nil, err
		}
		order.OrderNumber = number
	}

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			err = orderNumberConflict()
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("status", order.Status).
		Msg("order updated successfully")

	s.publish(ctx, events.ActionUpdated, order)
	return order, nil
}

// Delete returns every item quantity to stock and removes the order.
// Items whose product no longer exists are skipped.
func (s *orderService) Delete(ctx context.Context, identifier string) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.lock(ctx, tx, identifier)
	if err != nil {
		return err
	}

	products, lockErr := s.lockOrderProducts(ctx, tx, order.Items)
	if lockErr != nil {
		err = fmt.Errorf("failed to delete order: %w", lockErr)
		return err
	}

	seen := make(map[int64]*model.Product)
	var touched []int64
	for i, item := range order.Items {
		product := products[i]
		if product == nil {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Str("product_code", item.ProductCode).
				Msg("product of order item no longer exists, skipping restock")
			continue
		}
		if _, ok := seen[product.ID]; !ok {
			seen[product.ID] = product
			touched = append(touched, product.ID)
		}
		product.Restock(item.Quantity)
	}

	for _, id := range touched {
		if err = s.productRepo.SetStock(ctx, tx, id, seen[id].StockCount); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
	}

	if err = s.orderRepo.Delete(ctx, tx, order.ID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int("restocked_products", len(touched)).
		Msg("order deleted")

	s.publish(ctx, events.ActionDeleted, order)
	return nil
}

func (s *orderService) lock(ctx context.Context, tx pgx.Tx, identifier string) (*model.Order, error) {
	order, err := findByIdentifier(ctx, identifier,
		func(ctx context.Context, id int64) (*model.Order, error) { return s.orderRepo.LockByID(ctx, tx, id) },
		func(ctx context.Context, number string) (*model.Order, error) {
			return s.orderRepo.LockByNumber(ctx, tx, number)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("order not found")
	}
	return order, nil
}

// lockProducts locks every product referenced by lines, in ascending code
// order.
func (s *orderService) lockProducts(ctx context.Context, tx pgx.Tx, lines []orderLine) (map[string]*model.Product, error) {
	products := make(map[string]*model.Product, len(lines))
	for _, line := range lines {
		products[line.code] = nil
	}

	for _, code := range sortedKeys(products) {
		product, err := s.productRepo.LockByCode(ctx, tx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if product == nil {
			return nil, model.NewValidationError(fmt.Sprintf("product code '%s' not found", code))
		}
		products[code] = product
	}
	return products, nil
}

// lockOrderProducts locks the products of stored order items and returns
// them by item index, nil where the product is gone. Stored codes are locked
// first in sorted order, as Create does. Items whose code no longer resolves
// fall back to their product ID; those rows are locked afterwards in
// ascending ID order, outside the code ordering.
func (s *orderService) lockOrderProducts(ctx context.Context, tx pgx.Tx, items []model.OrderItem) ([]*model.Product, error) {
	byCode := make(map[string]*model.Product)
	for _, item := range items {
		if item.ProductCode != "" {
			byCode[item.ProductCode] = nil
		}
	}

	byID := make(map[int64]*model.Product)
	for _, code := range sortedKeys(byCode) {
		product, err := s.productRepo.LockByCode(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		if product == nil {
			continue
		}
		if locked, ok := byID[product.ID]; ok {
			product = locked
		}
		byID[product.ID] = product
		byCode[code] = product
	}

	var missing []int64
	for _, item := range items {
		if byCode[item.ProductCode] != nil || item.ProductID == 0 {
			continue
		}
		if _, ok := byID[item.ProductID]; ok || slices.Contains(missing, item.ProductID) {
			continue
		}
		missing = append(missing, item.ProductID)
	}
	slices.Sort(missing)

	for _, id := range missing {
		product, err := s.productRepo.LockByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if product != nil {
			byID[id] = product
		}
	}

	products := make([]*model.Product, len(items))
	for i, item := range items {
		if product := byCode[item.ProductCode]; product != nil {
			products[i] = product
			continue
		}
		products[i] = byID[item.ProductID]
	}
	return products, nil
}

func (s *orderService) publish(ctx context.Context, action string, order *model.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(action, order)); err != nil {
		s.logger.Warn().
			Err(err).
			Str("action", action).
			Str("order_number", order.OrderNumber).
			Msg("failed to publish order event")
	}
}

// generateNumber returns "<prefix>-<UTC timestamp><4 random digits>". The
// dealer code is the prefix when present.
func (s *orderService) generateNumber(dealerCode string) string {
	prefix := dealerCode
	if prefix == "" {
		prefix = s.numberPrefix
	}
	return fmt.Sprintf("%s-%s%04d", prefix, s.now().UTC().Format("20060102150405"), 1000+rand.IntN(9000))
}

// parseOrderLines validates the requested items before any row is locked.
func parseOrderLines(items []model.OrderItemRequest) ([]orderLine, error) {
	if len(items) == 0 {
		return nil, model.NewValidationError("items must contain at least one product")
	}

	lines := make([]orderLine, 0, len(items))
	var details []string
	for i, item := range items {
		code := strings.TrimSpace(item.ProductCode)
		if code == "" {
			details = append(details, fmt.Sprintf("items[%d].productCode is required", i))
			continue
		}

		quantity := 1
		if item.Quantity != nil && item.Quantity.IsSet() {
			q, err := item.Quantity.Int()
			if err != nil {
				q = 0
			}
			quantity = q
		}
		if quantity <= 0 {
			details = append(details, fmt.Sprintf("quantity for product '%s' must be a positive number", code))
			continue
		}

		line := orderLine{
			code:     code,
			quantity: quantity,
			size:     strings.TrimSpace(item.Size),
			color:    strings.TrimSpace(item.Color),
		}
		if item.UnitPrice != nil && item.UnitPrice.IsSet() {
			if price, err := item.UnitPrice.Decimal(); err == nil {
				line.unitPrice = &price
			}
		}
		if item.Discount != nil && item.Discount.IsSet() {
			if discount, err := item.Discount.Decimal(); err == nil {
				line.discount = &discount
			}
		}
		lines = append(lines, line)
	}

	if len(details) > 0 {
		return nil, model.NewValidationError(details...)
	}
	return lines, nil
}

// priceLine freezes the price of one line. The request price overrides the
// dealer price. A positive discount percentage is applied per unit, and the
// subtotal is the rounded applied price times the quantity.
func priceLine(line orderLine, product *model.Product, currency string) model.OrderItem {
	unit := product.DealerPrice
	if line.unitPrice != nil {
		unit = *line.unitPrice
	}

	applied := unit
	var discount *decimal.Decimal
	if line.discount != nil && line.discount.IsPositive() {
		discount = line.discount
		applied = unit.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))
	}
	applied = applied.Round(2)

	return model.OrderItem{
		ProductID:        product.ID,
		ProductCode:      product.StockCode,
		ProductName:      product.Name,
		Quantity:         line.quantity,
		UnitPrice:        unit.Round(2),
		DiscountRate:     discount,
		AppliedUnitPrice: applied,
		Subtotal:         applied.Mul(decimal.NewFromInt(int64(line.quantity))).Round(2),
		Currency:         currency,
		RequestedSize:    line.size,
		RequestedColor:   line.color,
	}
}

// normalizeMetadata treats an explicit JSON null as no metadata.
func normalizeMetadata(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func orderNumberConflict() error {
	return model.NewConflictError("order number already in use", "orderNumber must be unique")
}
