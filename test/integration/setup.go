package integration

import (
	"context"
	"testing"
	"time"

	"stok/internal/config"
	"stok/internal/database"
	"stok/internal/model"
	"stok/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the service
// schema and returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Enough connections for the concurrent order tests to contend on row
	// locks rather than on the pool.
	dbConfig := config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProduct inserts a product with the given stock code and stock count.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, code string, stock int, dealerPrice string) *model.Product {
	t.Helper()

	p := &model.Product{
		StockCode:         code,
		Name:              "Ürün " + code,
		Category:          "Test",
		ConsumerPrice:     decimal.RequireFromString(dealerPrice).Mul(decimal.NewFromInt(2)),
		DealerPrice:       decimal.RequireFromString(dealerPrice),
		StockCount:        stock,
		Sizes:             []string{"STD"},
		Colors:            []string{},
		ColorCombinations: []string{},
		Variants:          []model.Variant{},
	}

	repo := repository.NewProductRepository(pool, zerolog.Nop())
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to seed product %s: %v", code, err)
	}
	return p
}

// StockOf reads the current stock count of a product.
func StockOf(t *testing.T, pool *pgxpool.Pool, code string) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock_count FROM products WHERE stock_code = $1", code).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock of %s: %v", code, err)
	}
	return stock
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE orders, products, dealers RESTART IDENTITY")
	if err != nil {
		t.Logf("failed to clean tables: %v", err)
	}
}
