package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Cart:               NewCartRepository(db, logger),
		CheckoutSubmission: NewCheckoutSubmissionRepository(db, logger),
		CheckoutEvent:      NewCheckoutEventRepository(db, logger),
	}
}
