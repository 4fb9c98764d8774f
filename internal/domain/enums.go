package domain

// PaymentMethod is the shopper's chosen payment option. It is a label passed
// through to the marketplace backend, not a gateway integration.
type PaymentMethod string

const (
	PaymentMethodCOD  PaymentMethod = "cod"
	PaymentMethodCard PaymentMethod = "card"
)

// IsValid checks if the payment method is a known option
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard:
		return true
	default:
		return false
	}
}

// CheckoutState represents where a checkout draft is in its lifecycle
type CheckoutState string

const (
	// EDITING - form fields mutable, validation errors field-scoped
	CheckoutStateEditing CheckoutState = "editing"
	// SUBMITTING - a submit is in flight, further submits rejected
	CheckoutStateSubmitting CheckoutState = "submitting"
	// COMPLETE - order placed, cart cleared, terminal
	CheckoutStateComplete CheckoutState = "complete"
)

// IsValid checks if the checkout state is valid
func (s CheckoutState) IsValid() bool {
	switch s {
	case CheckoutStateEditing, CheckoutStateSubmitting, CheckoutStateComplete:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid. A failed submit
// returns the draft to editing; complete is terminal.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	switch s {
	case CheckoutStateEditing:
		return next == CheckoutStateSubmitting
	case CheckoutStateSubmitting:
		return next == CheckoutStateEditing || next == CheckoutStateComplete
	case CheckoutStateComplete:
		return false
	default:
		return false
	}
}
