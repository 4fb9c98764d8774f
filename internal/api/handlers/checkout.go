package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/api/middleware"
	"github.com/ayurbazaar/storefront/internal/checkout"
	"github.com/ayurbazaar/storefront/internal/domain"
)

// SubmitRequest is the shipping form plus the shopper's marketplace customer id
type SubmitRequest struct {
	domain.ShippingForm
	CustomerID string `json:"customerId"`
}

type DraftItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// DraftResponse renders a checkout draft with plain JSON numbers for prices
type DraftResponse struct {
	ID           string      `json:"id"`
	Items        []DraftItem `json:"items"`
	Total        float64     `json:"total"`
	State        string      `json:"state"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	OrderID      string      `json:"orderId,omitempty"`
}

func draftResponse(draft *domain.CheckoutDraft) DraftResponse {
	items := make([]DraftItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, DraftItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			Quantity:  item.Quantity,
		})
	}
	return DraftResponse{
		ID:           draft.ID.String(),
		Items:        items,
		Total:        draft.Total.InexactFloat64(),
		State:        string(draft.State),
		ErrorMessage: draft.ErrorMessage,
		OrderID:      draft.OrderID,
	}
}

// HandleBeginCheckout snapshots and prices the cart into a new draft.
// An empty cart is refused with 409 before any draft exists.
func HandleBeginCheckout(orchestrator *checkout.Orchestrator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)

		draft, err := orchestrator.Begin(c.Request.Context(), key)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, draftResponse(draft))
	}
}

func HandleGetCheckout(orchestrator *checkout.Orchestrator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		draftID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout id"})
			return
		}

		draft, err := orchestrator.Get(c.Request.Context(), draftID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, draftResponse(draft))
	}
}

// HandleSubmitCheckout validates the shipping form and places the order.
// Validation failures come back 422 with per-field messages and the draft
// stays in editing; a backend rejection or expired session also returns the
// draft to editing, cart untouched. Resubmitting a completed draft returns
// the same order id.
func HandleSubmitCheckout(orchestrator *checkout.Orchestrator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		draftID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout id"})
			return
		}

		var req SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		token, _ := middleware.GetToken(c)

		draft, err := orchestrator.Submit(c.Request.Context(), draftID, token, req.CustomerID, req.ShippingForm)
		if err != nil {
			status, body := errorStatus(logger, err)
			if draft != nil {
				// Include the draft so the client can re-render the form
				// with its state and top-level message without a refetch
				body["draft"] = draftResponse(draft)
			}
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusOK, draftResponse(draft))
	}
}
