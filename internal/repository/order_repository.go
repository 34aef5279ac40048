package repository

import (
	"context"
	"errors"
	"fmt"

	"stok/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var orderColumns = []string{
	"id", "order_number", "status", "dealer_name", "dealer_code",
	"contact_name", "contact_email", "contact_phone", "currency",
	"items", "total_quantity", "total_amount", "notes", "metadata",
	"created_at", "updated_at",
}

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var metadata []byte
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.DealerName, &o.DealerCode,
		&o.ContactName, &o.ContactEmail, &o.ContactPhone, &o.Currency,
		&o.Items, &o.TotalQuantity, &o.TotalAmount, &o.Notes, &metadata,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Metadata = rawJSON(metadata)
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func orderConditions(filter model.OrderFilter) squirrel.And {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"order_number": pattern},
			squirrel.ILike{"dealer_name": pattern},
			squirrel.ILike{"dealer_code": pattern},
		})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.DealerCode != "" {
		where = append(where, squirrel.Eq{"dealer_code": filter.DealerCode})
	}
	if filter.CreatedSince != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *filter.CreatedSince})
	}
	return where
}

// List returns one page of orders, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	where := orderConditions(filter)

	total, err := count(ctx, r.pool, psql.Select("COUNT(*)").From("orders").Where(where))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, err
	}

	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Page.PageSize)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build order query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepository) getOne(ctx context.Context, q querier, column string, value any, lock bool) (*model.Order, error) {
	builder := psql.Select(orderColumns...).From("orders").Where(squirrel.Eq{column: value})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	o, err := scanOrder(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface(column, value).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface(column, value).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return o, nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, r.pool, "id", id, false)
}

// GetByNumber retrieves an order by its order number.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, r.pool, "order_number", orderNumber, false)
}

// LockByID reads and locks an order row inside tx.
func (r *orderRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	return r.getOne(ctx, tx, "id", id, true)
}

// LockByNumber reads and locks an order row inside tx.
func (r *orderRepository) LockByNumber(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, tx, "order_number", orderNumber, true)
}

// NumberExists reports whether an order other than excludeID uses orderNumber.
func (r *orderRepository) NumberExists(ctx context.Context, tx pgx.Tx, orderNumber string, excludeID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1 AND id <> $2)`,
		orderNumber, excludeID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to check order number")
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	items, err := jsonb(o.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (
			order_number, status, dealer_name, dealer_code, contact_name,
			contact_email, contact_phone, currency, items, total_quantity,
			total_amount, notes, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		o.OrderNumber, o.Status, o.DealerName, o.DealerCode, o.ContactName,
		o.ContactEmail, o.ContactPhone, o.Currency, items, o.TotalQuantity,
		o.TotalAmount, o.Notes, nullableJSON(o.Metadata),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", o.OrderNumber).
			Msg("failed to create order")
		return wrapWriteError("create order", err)
	}

	r.logger.Debug().
		Int64("order_id", o.ID).
		Str("order_number", o.OrderNumber).
		Int("item_count", len(o.Items)).
		Msg("order created successfully")

	return nil
}

// Update writes the header fields of an order locked in tx.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	query := `
		UPDATE orders SET
			order_number = $2, status = $3, dealer_name = $4, dealer_code = $5,
			contact_name = $6, contact_email = $7, contact_phone = $8,
			currency = $9, notes = $10, metadata = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		o.ID, o.OrderNumber, o.Status, o.DealerName, o.DealerCode,
		o.ContactName, o.ContactEmail, o.ContactPhone,
		o.Currency, o.Notes, nullableJSON(o.Metadata),
	).Scan(&o.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", o.ID).Msg("failed to update order")
		return wrapWriteError("update order", err)
	}

	return nil
}

// Delete removes an order within the provided transaction.
func (r *orderRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// CountByDealerCode counts the orders placed under a dealer code.
func (r *orderRepository) CountByDealerCode(ctx context.Context, dealerCode string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE dealer_code = $1`, dealerCode).Scan(&n)
	if err != nil {
		r.logger.Error().Err(err).Str("dealer_code", dealerCode).Msg("failed to count dealer orders")
		return 0, fmt.Errorf("failed to count dealer orders: %w", err)
	}
	return n, nil
}

// SummaryByDealerCode aggregates the orders placed under a dealer code.
func (r *orderRepository) SummaryByDealerCode(ctx context.Context, dealerCode string) (*model.OrdersSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(total_quantity), 0), MAX(created_at)
		FROM orders
		WHERE dealer_code = $1
	`

	var s model.OrdersSummary
	err := r.pool.QueryRow(ctx, query, dealerCode).Scan(
		&s.TotalOrders, &s.TotalAmount, &s.TotalQuantity, &s.LastOrderAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("dealer_code", dealerCode).Msg("failed to summarize dealer orders")
		return nil, fmt.Errorf("failed to summarize dealer orders: %w", err)
	}
	return &s, nil
}
