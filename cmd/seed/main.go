package main

import (
	"context"
	"fmt"
	"os"

	"stok/internal/config"
	"stok/internal/database"
	"stok/internal/model"
	"stok/internal/repository"
	"stok/internal/service"
	"stok/internal/storage"
)

// sampleProducts is a small catalogue for local development. Stock codes
// are derived by the product service, so re-running the seed reports the
// existing rows as conflicts and leaves them untouched.
var sampleProducts = []struct {
	name, category, consumer, dealer, stock string
	combinations, sizes                     []string
	featured                                bool
}{
	{"Basic Tshirt", "Tişört", "249.90", "149.90", "120", []string{"Kırmızı/Mavi", "Siyah"}, []string{"S", "M", "L", "XL"}, true},
	{"Kadın Bot", "Ayakkabı", "1299.90", "899.50", "40", []string{"Siyah", "Kahve/Bej"}, []string{"37", "38", "39", "40"}, false},
	{"Keten Gömlek", "Gömlek", "599.00", "399.00", "60", []string{"Beyaz"}, []string{"M", "L"}, false},
	{"Deri Kemer", "Aksesuar", "349.00", "219.00", "80", []string{"Kahve"}, nil, false},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	dealerRepo := repository.NewDealerRepository(pool, logger)

	store, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.PublicPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store: %w", err)
	}

	products := service.NewProductService(productRepo, cfg.Catalog.StockCodePrefix, logger)
	dealers := service.NewDealerService(dealerRepo, orderRepo, store, logger)

	created := 0
	for _, p := range sampleProducts {
		req := &model.ProductRequest{
			Name:              &p.name,
			Category:          &p.category,
			ConsumerPrice:     numeric(p.consumer),
			DealerPrice:       numeric(p.dealer),
			StockCount:        numeric(p.stock),
			ColorCombinations: list(p.combinations),
			Sizes:             list(p.sizes),
			Featured:          &p.featured,
		}

		product, err := products.Create(ctx, req)
		if model.IsKind(err, model.KindConflict) {
			logger.Info().Str("name", p.name).Msg("product already seeded")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
		created++
		logger.Info().Str("stock_code", product.StockCode).Int("variants", len(product.Variants)).Msg("product seeded")
	}

	code, name, email := "DEMO01", "Demo Bayi", "bayi@example.com"
	if _, err := dealers.Create(ctx, &model.DealerRequest{Code: &code, Name: &name, ContactEmail: &email}); err != nil {
		if !model.IsKind(err, model.KindConflict) {
			return fmt.Errorf("failed to seed dealer: %w", err)
		}
		logger.Info().Str("code", code).Msg("dealer already seeded")
	}

	logger.Info().Int("products_created", created).Msg("seed completed")
	return nil
}

func numeric(raw string) *model.Numeric {
	n := model.NewNumeric(raw)
	return &n
}

func list(values []string) *model.StringList {
	if values == nil {
		return nil
	}
	l := model.StringList(values)
	return &l
}
