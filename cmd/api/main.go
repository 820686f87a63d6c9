package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menuely/internal/blob"
	"menuely/internal/config"
	"menuely/internal/database"
	"menuely/internal/handler"
	"menuely/internal/notify"
	"menuely/internal/qr"
	"menuely/internal/repository"
	"menuely/internal/router"
	"menuely/internal/service"

	"github.com/redis/go-redis/v9"
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
	logger.Info().Msg("starting menuely API server")

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

	// Initialize blob store with S3 and local fallback
	localStore, err := blob.NewLocalStore(cfg.Blob.LocalDir, cfg.Blob.LocalBaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize local blob store: %w", err)
	}
	blobs := blob.Open(ctx, cfg.S3.Enabled, blob.S3Options{
		Bucket:        cfg.S3.Bucket,
		Region:        cfg.S3.Region,
		Prefix:        cfg.S3.Prefix,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	}, localStore, logger)

	// Initialize notification transports; an unset address leaves that channel log-only
	var mailer notify.Mailer
	if len(cfg.Notify.KafkaBrokers) > 0 {
		kafkaMailer := notify.NewKafkaMailer(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaMailTopic, logger)
		defer kafkaMailer.Close()
		mailer = kafkaMailer
		logger.Info().Strs("brokers", cfg.Notify.KafkaBrokers).Msg("publishing QR code mails to Kafka")
	} else {
		logger.Info().Msg("Kafka brokers not configured, QR code mails are logged only")
	}

	var stream notify.OrderStream
	if cfg.Notify.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Notify.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Notify.RedisAddr).Msg("redis not reachable, order pushes will be retried per message")
		}
		stream = notify.NewRedisOrderStream(client, cfg.Notify.OrderChannelPrefix)
	} else {
		logger.Info().Msg("Redis not configured, order pushes are logged only")
	}

	sink := notify.NewSink(mailer, stream, cfg.Notify.Timeout, logger)

	// Initialize repositories
	uow := repository.NewUnitOfWork(pool, logger)
	restaurantRepo := repository.NewRestaurantRepository(logger)
	userRepo := repository.NewUserRepository(logger)
	menuRepo := repository.NewMenuRepository(logger)
	imageRepo := repository.NewImageRepository(logger)
	categoryRepo := repository.NewCategoryRepository(logger)
	productRepo := repository.NewProductRepository(logger)
	orderRepo := repository.NewOrderRepository(logger)

	// Initialize services
	catalog := service.CatalogDeps{
		UnitOfWork:  uow,
		Restaurants: restaurantRepo,
		Menus:       menuRepo,
		Images:      imageRepo,
		Categories:  categoryRepo,
		Products:    productRepo,
		Blobs:       blobs,
		Encoder:     qr.NewEncoder(),
		Notifier:    sink,
		QR: service.QROptions{
			CallbackBaseURL: cfg.QR.CallbackBaseURL,
			Size:            cfg.QR.Size,
			Concurrency:     cfg.QR.UploadConcurrency,
		},
	}
	menuService := service.NewMenuService(catalog, logger)
	categoryService := service.NewCategoryService(catalog, logger)
	productService := service.NewProductService(catalog, logger)
	orderService := service.NewOrderService(uow, orderRepo, productRepo, restaurantRepo, sink, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Menus:      handler.NewMenuHandler(menuService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Products:   handler.NewProductHandler(productService, logger),
		Orders:     handler.NewOrderHandler(orderService, logger),
		Static:     localStore.Handler(),
	}, router.Identity{
		Restaurants: restaurantRepo,
		Users:       userRepo,
		Reader:      uow.Reader(),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
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

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Drain in-flight notifications before the transports close
		if err := sink.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("notifications still in flight at shutdown")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
