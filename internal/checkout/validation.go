package checkout

import (
	"regexp"
	"strings"

	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	zipPattern   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// ValidateShippingForm checks every field independently and returns all
// failures at once, scoped per field. A failed form never reaches the network.
func ValidateShippingForm(form domain.ShippingForm) *errors.ErrValidation {
	fields := make(map[string]string)

	if strings.TrimSpace(form.FullName) == "" {
		fields["fullName"] = "full name is required"
	}

	email := strings.TrimSpace(form.Email)
	if email == "" {
		fields["email"] = "email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "email is invalid"
	}

	if !phonePattern.MatchString(strings.TrimSpace(form.Phone)) {
		fields["phone"] = "phone must be exactly 10 digits"
	}

	if strings.TrimSpace(form.Address) == "" {
		fields["address"] = "address is required"
	}
	if strings.TrimSpace(form.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(form.State) == "" {
		fields["state"] = "state is required"
	}

	if !zipPattern.MatchString(strings.TrimSpace(form.ZipCode)) {
		fields["zipCode"] = "zip code must be 5 digits, optionally followed by -NNNN"
	}

	if form.PaymentMethod != "" && !form.PaymentMethod.IsValid() {
		fields["paymentMethod"] = "payment method must be cod or card"
	}

	if len(fields) > 0 {
		return &errors.ErrValidation{Fields: fields}
	}
	return nil
}
