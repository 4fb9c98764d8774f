package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/api"
	"github.com/ayurbazaar/storefront/internal/cache"
	"github.com/ayurbazaar/storefront/internal/cart"
	"github.com/ayurbazaar/storefront/internal/catalog"
	"github.com/ayurbazaar/storefront/internal/checkout"
	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/marketplace"
	"github.com/ayurbazaar/storefront/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting storefront server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cart change plumbing: this instance's mutations publish locally and
	// stamp their origin; the LISTEN/NOTIFY bridge folds in changes made by
	// other instances so subscribers here see those too.
	origin := uuid.New()
	notifier := cart.NewNotifier(logger)

	listener, err := postgres.NewCartListener(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to start cart change listener", zap.Error(err))
	}
	go listener.Run(ctx)
	go notifier.Bridge(ctx, listener.Changes(), origin.String())

	store := cart.NewStore(repos.Cart, notifier, origin, logger)

	// Checkout draft snapshot cache (redis when configured)
	ttl := time.Duration(cfg.Cart.SnapshotTTLMinutes) * time.Minute
	snapshots := cache.NewSnapshotCache(cfg.Redis, ttl, logger)

	// Marketplace backend client and the priced catalog in front of it
	client := marketplace.NewClient(cfg.Marketplace.BaseURL, logger)
	provider := catalog.NewCachedProvider(client, logger)
	if cfg.Cart.CatalogRefreshMins > 0 {
		go provider.RunRefreshLoop(ctx, time.Duration(cfg.Cart.CatalogRefreshMins)*time.Minute)
		logger.Info("Catalog refresh loop started",
			zap.Int("interval_minutes", cfg.Cart.CatalogRefreshMins))
	}

	orchestrator := checkout.NewOrchestrator(store, provider, snapshots, client, repos, logger)

	// Initialize router
	router := api.NewRouter(cfg, store, notifier, orchestrator, client, logger)

	// Create HTTP server. WriteTimeout stays generous because /v1/cart/events
	// holds SSE connections open.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
