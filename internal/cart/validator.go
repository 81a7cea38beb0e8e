package cart

import (
	"errors"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrForbidden    = errors.New("cart item belongs to another user")
)

// ValidateAdd checks that existing plus requested copies fit into the book's stock.
func ValidateAdd(book *catalog.Book, existingQty, requested int) error {
	if requested <= 0 {
		return catalog.ErrInvalidQuantity
	}
	return catalog.ValidateStockAvailable(book, existingQty+requested)
}

func ValidateUpdate(line *Line, userID uuid.UUID, book *catalog.Book, qty int) error {
	if qty <= 0 {
		return catalog.ErrInvalidQuantity
	}
	if err := ValidateRemove(line, userID); err != nil {
		return err
	}
	return catalog.ValidateStockAvailable(book, qty)
}

func ValidateRemove(line *Line, userID uuid.UUID) error {
	if line == nil {
		return ErrItemNotFound
	}
	if line.UserID != userID {
		return ErrForbidden
	}
	return nil
}
