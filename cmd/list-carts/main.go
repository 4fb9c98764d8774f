package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	fmt.Println("📋 Listing carts (most recently updated first):")

	records, err := repos.Cart.List(context.Background(), 100, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list carts: %v\n", err)
		os.Exit(1)
	}

	for i, record := range records {
		var lines []domain.CartLine
		if err := json.Unmarshal(record.Lines, &lines); err != nil {
			fmt.Printf("Cart #%d: %s (corrupt lines: %v)\n\n", i+1, record.Key, err)
			continue
		}

		count := 0
		for _, line := range lines {
			count += line.Quantity
		}

		fmt.Printf("Cart #%d:\n", i+1)
		fmt.Printf("  Key: %s\n", record.Key)
		fmt.Printf("  Items: %d (%d units)\n", len(lines), count)
		for _, line := range lines {
			fmt.Printf("    - %s x%d\n", line.ProductID, line.Quantity)
		}
		fmt.Printf("  Updated: %s\n", record.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	if len(records) == 0 {
		fmt.Println("❌ No carts found in database.")
	} else {
		fmt.Printf("✅ Found %d cart(s)\n", len(records))
	}
}
