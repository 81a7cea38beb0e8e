package order

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vasiliy-maslov/bookstore/internal/cart"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/db"
)

type BookStore interface {
	GetBookByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error)
	GetBookForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Book, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*catalog.Book, error)
}

type CartStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.Line, error)
	LockByUser(ctx context.Context, userID uuid.UUID) ([]cart.Line, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Store interface {
	CreateOrder(ctx context.Context, order *Order) error
	CreateItem(ctx context.Context, item *OrderItem) error
}

// Workflow turns a user's cart into an order in one transaction.
type Workflow struct {
	tx     db.Transactor
	books  BookStore
	carts  CartStore
	orders Store
	tracer trace.Tracer
}

func NewWorkflow(tx db.Transactor, books BookStore, carts CartStore, orders Store) *Workflow {
	return &Workflow{
		tx:     tx,
		books:  books,
		carts:  carts,
		orders: orders,
		tracer: otel.Tracer("github.com/vasiliy-maslov/bookstore/internal/order"),
	}
}

// CreateOrder checks the cart, then inside one transaction re-checks it under
// row locks, writes the order and its items, decrements stock and empties the
// cart. Every returned error is a *ValidationError, *NotFoundError,
// *catalog.InsufficientStockError or *InternalError, and leaves no trace in storage.
func (w *Workflow) CreateOrder(ctx context.Context, userID uuid.UUID, shippingAddress string) (*Order, error) {
	ctx, span := w.tracer.Start(ctx, "order.CreateOrder", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	order, err := w.createOrder(ctx, userID, shippingAddress)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, ErrInternal) {
			log.Error().Err(err).Stringer("user_id", userID).Msg("service: checkout failed")
		} else {
			log.Warn().Err(err).Stringer("user_id", userID).Msg("service: checkout rejected")
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order_id", order.ID.String()),
		attribute.Int("items", len(order.OrderItems)),
	)
	log.Info().
		Stringer("order_id", order.ID).
		Stringer("user_id", userID).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Int("items", len(order.OrderItems)).
		Msg("service: order created")

	return order, nil
}

func (w *Workflow) createOrder(ctx context.Context, userID uuid.UUID, shippingAddress string) (*Order, error) {
	address, err := ValidateShippingAddress(shippingAddress)
	if err != nil {
		return nil, err
	}

	lines, err := w.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, &InternalError{Op: "read cart", Err: err}
	}

	books, err := w.loadBooks(ctx, lines, w.books.GetBookByID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(lines, books); err != nil {
		return nil, err
	}

	var created *Order
	err = w.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := w.carts.LockByUser(ctx, userID)
		if err != nil {
			return &InternalError{Op: "lock cart", Err: err}
		}

		books, err := w.loadBooks(ctx, lines, w.books.GetBookForUpdate)
		if err != nil {
			return err
		}
		if err := checkStock(lines, books); err != nil {
			return err
		}

		order := &Order{
			UserID:          userID,
			Status:          StatusPending,
			PaymentStatus:   PaymentPending,
			ShippingAddress: address,
			OrderItems:      make([]OrderItem, 0, len(lines)),
		}
		for i, line := range lines {
			order.OrderItems = append(order.OrderItems, OrderItem{
				BookID:   line.BookID,
				Position: i,
				Quantity: line.Quantity,
				Price:    books[line.BookID].Price,
			})
		}
		order.TotalAmount = Total(order.OrderItems)

		if err := w.orders.CreateOrder(ctx, order); err != nil {
			return &InternalError{Op: "insert order", Err: err}
		}

		for i := range order.OrderItems {
			item := &order.OrderItems[i]
			item.OrderID = order.ID
			if err := w.orders.CreateItem(ctx, item); err != nil {
				return &InternalError{Op: "insert order item", Err: err}
			}
		}

		for i := range order.OrderItems {
			item := &order.OrderItems[i]
			book, err := w.books.DecrementStock(ctx, item.BookID, item.Quantity)
			if err != nil {
				if errors.Is(err, catalog.ErrBookNotFound) {
					return &NotFoundError{BookID: item.BookID}
				}
				return classify("decrement stock", err)
			}
			item.Book = book
		}

		if _, err := w.carts.DeleteByUser(ctx, userID); err != nil {
			return &InternalError{Op: "clear cart", Err: err}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, classify("commit order", err)
	}

	return created, nil
}

// loadBooks fetches every distinct book of the cart in ascending id order, so
// that concurrent checkouts acquire row locks in the same sequence.
func (w *Workflow) loadBooks(
	ctx context.Context,
	lines []cart.Line,
	get func(ctx context.Context, id uuid.UUID) (*catalog.Book, error),
) (map[uuid.UUID]*catalog.Book, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Reason: "cart is empty"}
	}

	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.BookID] {
			seen[line.BookID] = true
			ids = append(ids, line.BookID)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	books := make(map[uuid.UUID]*catalog.Book, len(ids))
	for _, id := range ids {
		book, err := get(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrBookNotFound) {
				return nil, &NotFoundError{BookID: id}
			}
			return nil, &InternalError{Op: "read book", Err: err}
		}
		books[id] = book
	}

	return books, nil
}

func checkStock(lines []cart.Line, books map[uuid.UUID]*catalog.Book) error {
	for _, line := range lines {
		if err := catalog.ValidateStockAvailable(books[line.BookID], line.Quantity); err != nil {
			return classify("check stock", err)
		}
	}
	return nil
}
