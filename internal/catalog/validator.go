package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofrs/uuid"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookInUse         = errors.New("book is referenced by existing orders")
	ErrInvalidBook       = errors.New("invalid book")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	maxTitleLen    = 200
	maxAuthorLen   = 100
	maxCategoryLen = 50
)

// InsufficientStockError names the book and what is left of it.
type InsufficientStockError struct {
	BookID    uuid.UUID
	Title     string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("book %q does not have enough stock (%d left)", e.Title, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidateStockAvailable fails when requested is not positive or exceeds the book's stock.
func ValidateStockAvailable(book *Book, requested int) error {
	if requested <= 0 {
		return ErrInvalidQuantity
	}
	if book.Stock < requested {
		return &InsufficientStockError{
			BookID:    book.ID,
			Title:     book.Title,
			Available: book.Stock,
			Requested: requested,
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBook, fmt.Sprintf(format, args...))
}

func ValidateBook(b *Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Category = strings.TrimSpace(b.Category)

	switch {
	case b.Title == "":
		return invalid("title is required")
	case utf8.RuneCountInString(b.Title) > maxTitleLen:
		return invalid("title must be at most %d characters", maxTitleLen)
	case b.Author == "":
		return invalid("author is required")
	case utf8.RuneCountInString(b.Author) > maxAuthorLen:
		return invalid("author must be at most %d characters", maxAuthorLen)
	case b.Category == "":
		return invalid("category is required")
	case utf8.RuneCountInString(b.Category) > maxCategoryLen:
		return invalid("category must be at most %d characters", maxCategoryLen)
	case b.Price.IsNegative():
		return invalid("price cannot be negative")
	case !b.Price.Equal(b.Price.Round(2)):
		return invalid("price must have at most 2 decimal places")
	case b.Stock < 0:
		return invalid("stock cannot be negative")
	case b.Pages != nil && *b.Pages < 0:
		return invalid("pages cannot be negative")
	case b.Weight.Valid && b.Weight.Decimal.IsNegative():
		return invalid("weight cannot be negative")
	}

	return nil
}
