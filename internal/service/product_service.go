package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stok/internal/model"
	"stok/internal/repository"
	"stok/internal/stockcode"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// productService implements ProductService.
type productService struct {
	productRepo   repository.ProductRepository
	defaultPrefix string
	logger        zerolog.Logger
}

// NewProductService creates a new product service. defaultPrefix is used
// for stock codes when neither the request nor the stored product names one.
func NewProductService(productRepo repository.ProductRepository, defaultPrefix string, logger zerolog.Logger) ProductService {
	if strings.TrimSpace(defaultPrefix) == "" {
		defaultPrefix = stockcode.DefaultPrefix
	}
	return &productService{
		productRepo:   productRepo,
		defaultPrefix: strings.TrimSpace(defaultPrefix),
		logger:        logger.With().Str("service", "product").Logger(),
	}
}

// List returns one page of products.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, model.PageMeta, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, model.PageMeta{}, fmt.Errorf("failed to list products: %w", err)
	}
	return products, model.NewPageMeta(filter.Page, total), nil
}

// Get retrieves a product by ID or stock code.
func (s *productService) Get(ctx context.Context, identifier string) (*model.Product, error) {
	product, err := findByIdentifier(ctx, identifier, s.productRepo.GetByID, s.productRepo.GetByCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("product not found")
	}
	return product, nil
}

// Create stores a new product.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	product, err := s.build(req, nil)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.CodeExists(ctx, product.StockCode, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if exists {
		return nil, stockCodeConflict()
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, stockCodeConflict()
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("stock_code", product.StockCode).
		Int("variants", len(product.Variants)).
		Msg("product created successfully")

	return product, nil
}

// Update merges req into the stored product. The row stays locked until
// the update commits so concurrent orders cannot interleave with the
// stock count written here.
func (s *productService) Update(ctx context.Context, identifier string, req *model.ProductRequest) (product *model.Product, err error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	existing, err := s.lock(ctx, tx, identifier)
	if err != nil {
		return nil, err
	}

	product, err = s.build(req, existing)
	if err != nil {
		return nil, err
	}

	if product.StockCode != existing.StockCode {
		exists, checkErr := s.productRepo.CodeExists(ctx, product.StockCode, existing.ID)
		if checkErr != nil {
			err = fmt.Errorf("failed to update product: %w", checkErr)
			return nil, err
		}
		if exists {
			err = stockCodeConflict()
			return nil, err
		}
	}

	if err = s.productRepo.Update(ctx, tx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			err = stockCodeConflict()
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("stock_code", product.StockCode).
		Msg("product updated successfully")

	return product, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, identifier string) error {
	product, err := s.Get(ctx, identifier)
	if err != nil {
		return err
	}

	deleted, err := s.productRepo.Delete(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError("product not found")
	}

	s.logger.Info().Int64("product_id", product.ID).Str("stock_code", product.StockCode).Msg("product deleted")
	return nil
}

func (s *productService) lock(ctx context.Context, tx pgx.Tx, identifier string) (*model.Product, error) {
	product, err := findByIdentifier(ctx, identifier,
		func(ctx context.Context, id int64) (*model.Product, error) { return s.productRepo.LockByID(ctx, tx, id) },
		func(ctx context.Context, code string) (*model.Product, error) { return s.productRepo.LockByCode(ctx, tx, code) },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("product not found")
	}
	return product, nil
}

// build resolves every field of req against existing (nil on create) and
// derives the stock code and variants.
func (s *productService) build(req *model.ProductRequest, existing *model.Product) (*model.Product, error) {
	var details []string

	p := model.Product{}
	if existing != nil {
		p = *existing
	}
	creating := existing == nil

	p.Name = model.Resolve(req.Name, p.Name)
	if p.Name == "" {
		details = append(details, "name is required")
	}

	p.Category = model.Resolve(req.Category, p.Category)
	if p.Category == "" {
		details = append(details, "category is required")
	}

	if req.StockCount != nil && req.StockCount.IsSet() {
		count, err := req.StockCount.Int()
		if err != nil {
			details = append(details, "stockCount must be a number")
		} else {
			p.StockCount = max(count, 0)
		}
	}

	details = resolvePrice(details, "consumerPrice", req.ConsumerPrice, &p.ConsumerPrice, creating)
	details = resolvePrice(details, "dealerPrice", req.DealerPrice, &p.DealerPrice, creating)

	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Details != nil {
		p.Details = *req.Details
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}

	var requestedCombos, requestedColors []string
	if req.ColorCombinations != nil {
		requestedCombos = *req.ColorCombinations
	}
	if req.Colors != nil {
		requestedColors = *req.Colors
	}
	sizes := p.Sizes
	if req.Sizes != nil {
		sizes = *req.Sizes
	}

	if req.StockCodePrefix != nil {
		p.StockCodePrefix = strings.TrimSpace(*req.StockCodePrefix)
	}
	prefix := p.StockCodePrefix
	if prefix == "" {
		prefix = s.defaultPrefix
	}

	// Requested combinations win over requested colors, which win over the
	// stored combinations.
	generatorColors := requestedCombos
	if len(generatorColors) == 0 {
		generatorColors = requestedColors
	}
	if len(generatorColors) == 0 {
		generatorColors = p.ColorCombinations
	}

	colors := p.Colors
	if req.Colors != nil {
		colors = requestedColors
	}

	stock := stockcode.Generate(stockcode.Input{
		Name:              p.Name,
		ColorCombinations: generatorColors,
		Sizes:             stockcode.SanitizeSizes(sizes),
		Prefix:            prefix,
	})

	p.Variants = make([]model.Variant, 0, len(stock.Variants))
	for _, v := range stock.Variants {
		size := stockcode.SanitizeSize(v.Size)
		if size == "" {
			size = stockcode.StandardCode
		}
		p.Variants = append(p.Variants, model.Variant{
			Color:       v.Color,
			Size:        size,
			VariantCode: v.VariantCode,
			ColorCode:   v.ColorCode,
		})
	}

	p.Sizes = stockcode.SanitizeSizes(stock.Sizes)
	if len(p.Sizes) == 0 {
		p.Sizes = []string{stockcode.StandardCode}
	}
	p.ColorCombinations = stock.ColorCombinations
	p.Colors = colors
	if len(p.Colors) == 0 {
		p.Colors = stock.ColorCombinations
	}

	p.StockCode = stock.PrimaryCode
	if req.StockCode != nil && strings.TrimSpace(*req.StockCode) != "" {
		p.StockCode = strings.TrimSpace(*req.StockCode)
	}
	if p.StockCode == "" {
		details = append(details, "stock code could not be generated")
	}

	if len(details) > 0 {
		return nil, model.NewValidationError(details...)
	}
	return &p, nil
}

// resolvePrice parses an optional price into dst. A missing price is only
// an error on create.
func resolvePrice(details []string, field string, value *model.Numeric, dst *decimal.Decimal, required bool) []string {
	if value == nil || !value.IsSet() {
		if required {
			details = append(details, field+" is required")
		}
		return details
	}

	price, err := value.Decimal()
	if err != nil {
		return append(details, field+" must be a number")
	}
	if price.IsNegative() {
		return append(details, field+" must not be negative")
	}
	*dst = price
	return details
}

func stockCodeConflict() error {
	return model.NewConflictError("stock code already in use", "stockCode must be unique")
}
