package order

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MinShippingAddressLen = 10

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ValidateShippingAddress returns the trimmed address.
func ValidateShippingAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "", &ValidationError{Reason: "shipping address is required"}
	}
	if utf8.RuneCountInString(trimmed) < MinShippingAddressLen {
		return "", &ValidationError{Reason: fmt.Sprintf("shipping address is too short (minimum %d characters)", MinShippingAddressLen)}
	}
	return trimmed, nil
}

func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, s)
	}
	return status, nil
}

func CanTransition(from, to OrderStatus) bool {
	return allowedTransitions[from][to]
}
