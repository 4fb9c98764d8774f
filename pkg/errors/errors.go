package errors

import (
	"fmt"

	"github.com/ayurbazaar/storefront/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when shipping form validation fails.
// Fields maps field name to a human-readable message; a failed form is
// never submitted to the backend.
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrSessionExpired is returned when the marketplace backend rejects the
// shopper's bearer token (HTTP 401)
type ErrSessionExpired struct {
	Message string
}

func (e *ErrSessionExpired) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "session expired, please log in again"
}

// ErrBackend is returned when the marketplace backend rejects a request.
// Message carries the server-provided message verbatim when present.
type ErrBackend struct {
	StatusCode int
	Message    string
}

func (e *ErrBackend) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("marketplace backend error: status %d", e.StatusCode)
}

// ErrEmptyCart is returned when checkout is entered with an empty cart snapshot
type ErrEmptyCart struct{}

func (e *ErrEmptyCart) Error() string {
	return "cart is empty"
}

// ErrInvalidStateTransition is returned when an invalid checkout state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.CheckoutState
	To   domain.CheckoutState
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
