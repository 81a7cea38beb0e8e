package cart

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
)

// Line is one (user, book, quantity) entry awaiting checkout.
type Line struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	BookID    uuid.UUID     `json:"book_id" db:"book_id"`
	Quantity  int           `json:"quantity" db:"quantity"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	Book      *catalog.Book `json:"book,omitempty" db:"-"`
}

func (l Line) Subtotal() decimal.Decimal {
	if l.Book == nil {
		return decimal.Zero
	}
	return l.Book.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Items       []Line
	TotalItems  int
	TotalAmount decimal.Decimal
}

func NewCart(lines []Line) *Cart {
	c := &Cart{Items: lines, TotalAmount: decimal.Zero}
	for _, l := range lines {
		c.TotalItems += l.Quantity
		c.TotalAmount = c.TotalAmount.Add(l.Subtotal())
	}
	return c
}
