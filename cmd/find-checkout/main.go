package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/repository/postgres"
)

// Prints the recorded submission and audit events for a checkout draft.
// Drafts themselves live in the snapshot cache and expire; the submission row
// and event trail are what is durably queryable.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: find-checkout <draft-id>")
		os.Exit(1)
	}

	draftID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid draft id %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}

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
	ctx := context.Background()

	sub, err := repos.CheckoutSubmission.GetByDraftID(ctx, draftID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query submission: %v\n", err)
		os.Exit(1)
	}

	if sub == nil {
		fmt.Println("❌ No order recorded for this draft (never submitted, or submit failed).")
	} else {
		fmt.Println("✅ Submission:")
		fmt.Printf("  Draft ID: %s\n", sub.DraftID)
		fmt.Printf("  Cart Key: %s\n", sub.CartKey)
		fmt.Printf("  Order ID: %s\n", sub.OrderID)
		fmt.Printf("  Created: %s\n", sub.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	events, err := repos.CheckoutEvent.GetByDraftID(ctx, draftID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query events: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nEvents (%d):\n", len(events))
	for _, event := range events {
		data, _ := json.Marshal(event.EventData)
		fmt.Printf("  [%s] %s %s\n",
			event.CreatedAt.Format("2006-01-02 15:04:05"),
			event.EventType,
			string(data),
		)
	}
}
