package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/scheduler"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Server.LogLevel
	format := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		format = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment":   cfg.Server.Environment,
		"port":          cfg.Server.Port,
		"log_level":     logLevel,
		"session_store": cfg.Session.Store,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs the session store and the catalog cache
	if cfg.Session.Store == "redis" || cfg.Catalog.CacheEnabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			if cfg.Session.Store == "redis" {
				logger.Fatal("Failed to connect to Redis", err)
			}
			logger.Warn("Redis unavailable, catalog cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	policy, err := config.LoadPolicy(cfg.Engine.PolicyFile)
	if err != nil {
		logger.Fatal("Failed to load selection policy", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	featureRepo := repository.NewFeatureRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())

	var catalogCache repository.CatalogCache
	if cfg.Catalog.CacheEnabled && redis.GetClient() != nil {
		catalogCache = repository.NewRedisCatalogCache(redis.GetClient(), cfg.Catalog.CacheTTL)
	}

	var sessionStore repository.SessionStore
	var sweeper *scheduler.SessionSweeper
	if cfg.Session.Store == "redis" {
		sessionStore = repository.NewRedisSessionStore(redis.GetClient(), cfg.Session.TTL)
	} else {
		memoryStore := repository.NewMemorySessionStore(cfg.Session.TTL)
		sessionStore = memoryStore
		sweeper = scheduler.NewSessionSweeper(memoryStore, cfg.Session.SweepSchedule)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, featureRepo, catalogCache)
	cartService := service.NewCartService(cartRepo)
	configurationService := service.NewConfigurationService(
		sessionStore,
		catalogService,
		cartService,
		configurator.NewBuilder(cfg.Engine.PlaceholderImage),
		policy,
		hub,
	)
	importer := service.NewCatalogImporter(productRepo)

	var uploader service.ObjectUploader
	if cfg.S3.Bucket != "" {
		uploader = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		logger.Info("Cart export uploads enabled", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
		})
	}
	exportService := service.NewExportService(cartService, uploader, cfg.S3.ExportPrefix)

	// Initialize controllers
	productController := controller.NewProductController(catalogService)
	configurationController := controller.NewConfigurationController(configurationService, hub, cfg.CORS.AllowedOrigins)
	cartController := controller.NewCartController(cartService, exportService)
	adminController := controller.NewAdminController(catalogService, importer)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		productController,
		configurationController,
		cartController,
		adminController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	if sweeper != nil {
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start session sweeper", err)
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
