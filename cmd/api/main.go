package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stok/internal/config"
	"stok/internal/database"
	"stok/internal/events"
	"stok/internal/handler"
	"stok/internal/repository"
	"stok/internal/router"
	"stok/internal/service"
	"stok/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting stok API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	dealerRepo := repository.NewDealerRepository(pool, logger)

	store, servedDir, err := newStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store: %w", err)
	}

	publisher := newPublisher(ctx, cfg.AMQP, logger)
	defer publisher.Close()

	// Initialize services
	productService := service.NewProductService(productRepo, cfg.Catalog.StockCodePrefix, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, publisher, cfg.Catalog.OrderNumberPrefix, logger)
	dealerService := service.NewDealerService(dealerRepo, orderRepo, store, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Dealers:  handler.NewDealerHandler(dealerService, cfg.Uploads.MaxBytes, logger),
	}, router.Options{
		UploadsDir:        servedDir,
		UploadsPublicPath: cfg.Uploads.PublicPath,
		DB:                pool,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newStore picks S3 when enabled and falls back to the local uploads
// directory otherwise. The returned directory is non-empty when uploads
// must be served by this process.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Store, string, error) {
	if cfg.S3.Enabled {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err == nil {
			return s3Store, "", nil
		}
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 store, falling back to local file system")
	} else {
		logger.Info().Msg("using local file system for uploads (S3 disabled)")
	}

	local, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.PublicPath, logger)
	if err != nil {
		return nil, "", err
	}
	return local, cfg.Uploads.Dir, nil
}

// newPublisher connects to RabbitMQ when enabled. A broker that cannot be
// reached never blocks order intake; events are dropped instead.
func newPublisher(ctx context.Context, cfg config.AMQPConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled (AMQP disabled)")
		return events.NewNopPublisher()
	}

	publisher, err := events.NewAMQPPublisher(ctx, cfg.URL, cfg.Exchange, events.DialOptions{
		Attempts: 5,
		Backoff:  2 * time.Second,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to RabbitMQ, order events disabled")
		return events.NewNopPublisher()
	}
	return publisher
}
