package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/cart"
	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/repository/postgres"
)

// Clears one cart through the store so the change notification fires and any
// connected shopper sees the cart empty out.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: clear-cart <cart-key>")
		os.Exit(1)
	}
	key := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	store := cart.NewStore(repos.Cart, cart.NewNotifier(logger), uuid.New(), logger)

	if err := store.Clear(context.Background(), key); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to clear cart %s: %v\n", key, err)
		os.Exit(1)
	}

	fmt.Printf("✅ Cart %s cleared\n", key)
}
