package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/cache"
	"github.com/ayurbazaar/storefront/internal/cart"
	"github.com/ayurbazaar/storefront/internal/catalog"
	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/internal/marketplace"
	"github.com/ayurbazaar/storefront/internal/repository"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

// OrderSubmitter is the slice of the marketplace client the orchestrator needs
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, token string, order marketplace.OrderRequest) (*marketplace.OrderResponse, error)
}

// Orchestrator drives a checkout draft through editing -> submitting ->
// complete. Pricing is locked into the draft when the shopper enters
// checkout; the total submitted is the locked snapshot total. Every failure
// path returns the draft to editing with the cart untouched.
type Orchestrator struct {
	store     *cart.Store
	catalog   catalog.Provider
	snapshots cache.SnapshotCache
	backend   OrderSubmitter
	repos     *repository.Repositories
	logger    *zap.Logger

	// Guards the read-check-transition step so a second submit cannot slip
	// in while the first is still marking the draft as submitting.
	mu sync.Mutex
}

// NewOrchestrator creates a checkout orchestrator
func NewOrchestrator(
	store *cart.Store,
	provider catalog.Provider,
	snapshots cache.SnapshotCache,
	backend OrderSubmitter,
	repos *repository.Repositories,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:     store,
		catalog:   provider,
		snapshots: snapshots,
		backend:   backend,
		repos:     repos,
		logger:    logger,
	}
}

// Begin snapshots the cart and prices it. An empty cart refuses checkout
// entirely: no draft is created and no form is ever rendered.
func (o *Orchestrator) Begin(ctx context.Context, cartKey string) (*domain.CheckoutDraft, error) {
	lines, err := o.store.Read(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &errors.ErrEmptyCart{}
	}

	items := make([]domain.SnapshotItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		product, err := o.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to price product %s: %w", line.ProductID, err)
		}

		items = append(items, domain.SnapshotItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	draft := &domain.CheckoutDraft{
		ID:        uuid.New(),
		CartKey:   cartKey,
		Items:     items,
		Total:     total,
		State:     domain.CheckoutStateEditing,
		CreatedAt: time.Now(),
	}

	if err := o.snapshots.Put(ctx, draft); err != nil {
		return nil, err
	}

	o.recordEvent(ctx, draft.ID, "draft_created", map[string]interface{}{
		"cart_key": cartKey,
		"items":    len(items),
		"total":    total.String(),
	})

	return draft, nil
}

// Get returns a checkout draft by id
func (o *Orchestrator) Get(ctx context.Context, draftID uuid.UUID) (*domain.CheckoutDraft, error) {
	return o.snapshots.Get(ctx, draftID)
}

// Submit validates the shipping form and places the order. Validation
// failures are returned field-scoped without touching the network. A draft
// already completed returns its order id again; a draft mid-submit is
// rejected rather than cancelled.
func (o *Orchestrator) Submit(ctx context.Context, draftID uuid.UUID, token, customerID string, form domain.ShippingForm) (*domain.CheckoutDraft, error) {
	o.mu.Lock()
	draft, err := o.snapshots.Get(ctx, draftID)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}

	if draft.State == domain.CheckoutStateComplete {
		o.mu.Unlock()
		return draft, nil
	}
	if draft.State == domain.CheckoutStateSubmitting {
		o.mu.Unlock()
		return draft, &errors.ErrInvalidStateTransition{
			From: domain.CheckoutStateSubmitting,
			To:   domain.CheckoutStateSubmitting,
		}
	}

	if len(draft.Items) == 0 {
		o.mu.Unlock()
		return draft, &errors.ErrEmptyCart{}
	}

	if validationErr := ValidateShippingForm(form); validationErr != nil {
		o.mu.Unlock()
		return draft, validationErr
	}

	// A submission recorded for this draft means a prior attempt already
	// placed the order; finish the draft instead of ordering twice.
	if existing, subErr := o.repos.CheckoutSubmission.GetByDraftID(ctx, draftID); subErr == nil && existing != nil {
		draft.State = domain.CheckoutStateComplete
		draft.OrderID = existing.OrderID
		draft.ErrorMessage = ""
		if putErr := o.snapshots.Put(ctx, draft); putErr != nil {
			o.logger.Warn("Failed to store completed draft", zap.Error(putErr))
		}
		o.mu.Unlock()
		return draft, nil
	}

	draft.State = domain.CheckoutStateSubmitting
	draft.ErrorMessage = ""
	if err := o.snapshots.Put(ctx, draft); err != nil {
		o.mu.Unlock()
		return draft, err
	}
	o.mu.Unlock()

	order := o.buildOrderRequest(draft, customerID, form)

	resp, err := o.backend.SubmitOrder(ctx, token, order)
	if err != nil {
		return o.failSubmit(ctx, draft, err), err
	}

	return o.completeSubmit(ctx, draft, order, resp.ID), nil
}

// buildOrderRequest maps the locked snapshot onto the wire payload. The
// delivery address is the single concatenated string the backend expects.
func (o *Orchestrator) buildOrderRequest(draft *domain.CheckoutDraft, customerID string, form domain.ShippingForm) marketplace.OrderRequest {
	items := make([]marketplace.OrderItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, marketplace.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice.InexactFloat64(),
		})
	}

	paymentMethod := form.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodCOD
	}

	address := fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(form.Address),
		strings.TrimSpace(form.City),
		strings.TrimSpace(form.State),
		strings.TrimSpace(form.ZipCode),
	)

	return marketplace.OrderRequest{
		CustomerID:      customerID,
		Items:           items,
		TotalAmount:     draft.Total.InexactFloat64(),
		DeliveryAddress: address,
		PaymentMethod:   string(paymentMethod),
	}
}

// failSubmit returns the draft to editing with a top-level message. The cart
// is left intact so the shopper can retry without re-adding items.
func (o *Orchestrator) failSubmit(ctx context.Context, draft *domain.CheckoutDraft, cause error) *domain.CheckoutDraft {
	o.mu.Lock()
	defer o.mu.Unlock()

	draft.State = domain.CheckoutStateEditing
	draft.ErrorMessage = submitErrorMessage(cause)
	if err := o.snapshots.Put(ctx, draft); err != nil {
		o.logger.Warn("Failed to store draft after submit failure", zap.Error(err))
	}

	o.recordEvent(ctx, draft.ID, "submit_failed", map[string]interface{}{
		"error": cause.Error(),
	})

	o.logger.Warn("Order submit failed",
		zap.String("draft_id", draft.ID.String()),
		zap.Error(cause),
	)

	return draft
}

func (o *Orchestrator) completeSubmit(ctx context.Context, draft *domain.CheckoutDraft, order marketplace.OrderRequest, orderID string) *domain.CheckoutDraft {
	// Clear the cart first: a subscriber notified by the clear re-reads an
	// empty cart, matching the order placed.
	if err := o.store.Clear(ctx, draft.CartKey); err != nil {
		o.logger.Warn("Failed to clear cart after order placement",
			zap.String("cart_key", draft.CartKey),
			zap.Error(err),
		)
	}

	o.mu.Lock()
	draft.State = domain.CheckoutStateComplete
	draft.OrderID = orderID
	draft.ErrorMessage = ""
	if err := o.snapshots.Put(ctx, draft); err != nil {
		o.logger.Warn("Failed to store completed draft", zap.Error(err))
	}
	o.mu.Unlock()

	sub := &domain.CheckoutSubmission{
		DraftID:     draft.ID,
		CartKey:     draft.CartKey,
		OrderID:     orderID,
		RequestHash: hashOrderRequest(order),
	}
	if err := o.repos.CheckoutSubmission.Create(ctx, sub); err != nil {
		o.logger.Warn("Failed to record checkout submission", zap.Error(err))
	}

	o.recordEvent(ctx, draft.ID, "order_placed", map[string]interface{}{
		"order_id": orderID,
		"total":    draft.Total.String(),
	})

	o.logger.Info("Order placed",
		zap.String("draft_id", draft.ID.String()),
		zap.String("order_id", orderID),
	)

	return draft
}

func (o *Orchestrator) recordEvent(ctx context.Context, draftID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.CheckoutEvent{
		DraftID:   draftID,
		EventType: eventType,
		EventData: data,
	}
	if err := o.repos.CheckoutEvent.Create(ctx, event); err != nil {
		o.logger.Warn("Failed to record checkout event", zap.String("event_type", eventType), zap.Error(err))
	}
}

// submitErrorMessage picks the top-level message shown for a failed submit
func submitErrorMessage(err error) string {
	switch e := err.(type) {
	case *errors.ErrSessionExpired:
		return "Your session has expired. Please log in again."
	case *errors.ErrBackend:
		if e.Message != "" {
			return e.Message
		}
		return "Failed to place order. Please try again."
	default:
		return "Failed to place order. Please try again."
	}
}

func hashOrderRequest(order marketplace.OrderRequest) string {
	payload, err := json.Marshal(order)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
