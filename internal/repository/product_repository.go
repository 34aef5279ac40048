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

var productColumns = []string{
	"id", "stock_code", "stock_code_prefix", "name", "category",
	"consumer_price", "dealer_price", "stock_count",
	"sizes", "colors", "color_combinations", "variants",
	"featured", "description", "details", "created_at", "updated_at",
}

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.StockCode, &p.StockCodePrefix, &p.Name, &p.Category,
		&p.ConsumerPrice, &p.DealerPrice, &p.StockCount,
		&p.Sizes, &p.Colors, &p.ColorCombinations, &p.Variants,
		&p.Featured, &p.Description, &p.Details, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// BeginTx starts a new database transaction.
func (r *productRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func productConditions(filter model.ProductFilter) squirrel.And {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"stock_code": pattern},
		})
	}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"category": filter.Category})
	}
	if filter.Featured != nil {
		where = append(where, squirrel.Eq{"featured": *filter.Featured})
	}
	if filter.UpdatedSince != nil {
		where = append(where, squirrel.GtOrEq{"updated_at": *filter.UpdatedSince})
	}
	return where
}

// List returns one page of products ordered by most recently updated.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	where := productConditions(filter)

	total, err := count(ctx, r.pool, psql.Select("COUNT(*)").From("products").Where(where))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, err
	}

	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(where).
		OrderBy("updated_at DESC", "id DESC").
		Limit(uint64(filter.Page.PageSize)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build product query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("page", filter.Page.Page).
			Int("page_size", filter.Page.PageSize).
			Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) getOne(ctx context.Context, q querier, column string, value any, lock bool) (*model.Product, error) {
	builder := psql.Select(productColumns...).From("products").Where(squirrel.Eq{column: value})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	p, err := scanProduct(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface(column, value).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface(column, value).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.getOne(ctx, r.pool, "id", id, false)
}

// GetByCode retrieves a single product by its stock code.
func (r *productRepository) GetByCode(ctx context.Context, code string) (*model.Product, error) {
	return r.getOne(ctx, r.pool, "stock_code", code, false)
}

// LockByID reads and locks a product row inside tx.
func (r *productRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error) {
	return r.getOne(ctx, tx, "id", id, true)
}

// LockByCode reads and locks a product row inside tx.
func (r *productRepository) LockByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Product, error) {
	return r.getOne(ctx, tx, "stock_code", code, true)
}

// CodeExists reports whether a product other than excludeID uses code.
func (r *productRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE stock_code = $1 AND id <> $2)`,
		code, excludeID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("stock_code", code).Msg("failed to check stock code")
		return false, fmt.Errorf("failed to check stock code: %w", err)
	}
	return exists, nil
}

type productJSON struct {
	sizes, colors, combinations, variants string
}

func encodeProductJSON(p *model.Product) (productJSON, error) {
	var out productJSON
	var err error
	if out.sizes, err = jsonb(p.Sizes); err != nil {
		return out, err
	}
	if out.colors, err = jsonb(p.Colors); err != nil {
		return out, err
	}
	if out.combinations, err = jsonb(p.ColorCombinations); err != nil {
		return out, err
	}
	if out.variants, err = jsonb(p.Variants); err != nil {
		return out, err
	}
	return out, nil
}

// Create inserts a product and fills in its ID and timestamps.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	doc, err := encodeProductJSON(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (
			stock_code, stock_code_prefix, name, category, consumer_price, dealer_price,
			stock_count, sizes, colors, color_combinations, variants,
			featured, description, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err = r.pool.QueryRow(ctx, query,
		p.StockCode, p.StockCodePrefix, p.Name, p.Category, p.ConsumerPrice, p.DealerPrice,
		p.StockCount, doc.sizes, doc.colors, doc.combinations, doc.variants,
		p.Featured, p.Description, p.Details,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("stock_code", p.StockCode).Msg("failed to create product")
		return wrapWriteError("create product", err)
	}

	r.logger.Debug().
		Int64("product_id", p.ID).
		Str("stock_code", p.StockCode).
		Msg("product created successfully")

	return nil
}

// Update writes every column of a product row locked in tx.
func (r *productRepository) Update(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	doc, err := encodeProductJSON(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE products SET
			stock_code = $2, stock_code_prefix = $3, name = $4, category = $5,
			consumer_price = $6, dealer_price = $7, stock_count = $8,
			sizes = $9, colors = $10, color_combinations = $11, variants = $12,
			featured = $13, description = $14, details = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = tx.QueryRow(ctx, query,
		p.ID, p.StockCode, p.StockCodePrefix, p.Name, p.Category,
		p.ConsumerPrice, p.DealerPrice, p.StockCount,
		doc.sizes, doc.colors, doc.combinations, doc.variants,
		p.Featured, p.Description, p.Details,
	).Scan(&p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", p.ID).Msg("failed to update product")
		return wrapWriteError("update product", err)
	}

	return nil
}

// SetStock writes the stock count of a product locked in tx.
func (r *productRepository) SetStock(ctx context.Context, tx pgx.Tx, id int64, stockCount int) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET stock_count = $2, updated_at = NOW() WHERE id = $1`,
		id, stockCount,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("product_id", id).
			Int("stock_count", stockCount).
			Msg("failed to update stock")
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

// Delete removes a product. Orders keep their item snapshots.
func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
