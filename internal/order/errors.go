package order

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrValidation              = errors.New("validation failed")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidPaymentStatus    = errors.New("invalid payment status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInternal                = errors.New("internal error")
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a cart line whose book no longer exists.
type NotFoundError struct {
	BookID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %s does not exist", e.BookID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == catalog.ErrBookNotFound
}

type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("order: %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// classify reduces any error seen during checkout to one of the four workflow kinds.
func classify(op string, err error) error {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		stockErr      *catalog.InsufficientStockError
		internalErr   *InternalError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr
	case errors.As(err, &notFoundErr):
		return notFoundErr
	case errors.As(err, &stockErr):
		return stockErr
	case errors.As(err, &internalErr):
		return internalErr
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return &ValidationError{Reason: err.Error()}
	default:
		return &InternalError{Op: op, Err: err}
	}
}
