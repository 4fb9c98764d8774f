package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine represents one product's presence in a cart.
// Quantity is always >= 1; a line reduced below 1 is removed, not kept at zero.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the persisted collection of lines for one cart key.
// At most one line per ProductID.
type Cart struct {
	Key       string
	Lines     []CartLine
	UpdatedAt time.Time
}

// Count returns the sum of all line quantities
func (c *Cart) Count() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Contains reports whether a line exists for the given product
func (c *Cart) Contains(productID string) bool {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// Product is the catalog view of a product as served by the marketplace backend
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Category    string          `json:"category,omitempty"`
	InStock     bool            `json:"inStock"`
}

// SnapshotItem is one cart line enriched with the name and unit price that
// were current when the shopper entered checkout. Pricing is locked here;
// it is never re-fetched at submit time.
type SnapshotItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// CheckoutDraft is the ephemeral order draft held while a shopper moves
// through checkout. Total is computed once at entry from the snapshot items;
// any mismatch with server-side pricing is the backend's to reject.
type CheckoutDraft struct {
	ID           uuid.UUID       `json:"id"`
	CartKey      string          `json:"cartKey"`
	Items        []SnapshotItem  `json:"items"`
	Total        decimal.Decimal `json:"total"`
	State        CheckoutState   `json:"state"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	OrderID      string          `json:"orderId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ShippingForm holds the shipping and payment fields collected at checkout
type ShippingForm struct {
	FullName      string        `json:"fullName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	ZipCode       string        `json:"zipCode"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// CheckoutSubmission records a completed draft submission (draft -> order)
type CheckoutSubmission struct {
	DraftID     uuid.UUID
	CartKey     string
	OrderID     string
	RequestHash string
	CreatedAt   time.Time
}

// CheckoutEvent is an audit event for a checkout draft
type CheckoutEvent struct {
	ID        uuid.UUID
	DraftID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}
