package order_test

import (
	"context"
	"errors"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/bookstore/internal/cart"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/order"
)

var errInjected = errors.New("injected storage failure")

type undoKey struct{}

type undoLog struct {
	undo    []func()
	release []func()
}

// memStore keeps books, carts and orders in memory. Writes made inside
// WithinTx are reverted when the transaction function fails.
type memStore struct {
	mu     sync.Mutex
	books  map[uuid.UUID]*catalog.Book
	carts  map[uuid.UUID][]cart.Line
	orders map[uuid.UUID]order.Order
	items  []order.OrderItem

	cartLocksMu sync.Mutex
	cartLocks   map[uuid.UUID]*sync.Mutex

	failDecrementAt int
	decrementCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		books:     make(map[uuid.UUID]*catalog.Book),
		carts:     make(map[uuid.UUID][]cart.Line),
		orders:    make(map[uuid.UUID]order.Order),
		cartLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *memStore) addBook(title, price string, stock int) *catalog.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := &catalog.Book{
		ID:    uuid.Must(uuid.NewV4()),
		Title: title,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	s.books[book.ID] = book
	return book
}

func (s *memStore) addToCart(userID, bookID uuid.UUID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[userID] = append(s.carts[userID], cart.Line{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   userID,
		BookID:   bookID,
		Quantity: qty,
	})
}

func (s *memStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[id].Stock
}

func (s *memStore) setPrice(id uuid.UUID, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[id].Price = decimal.RequireFromString(price)
}

func (s *memStore) cartOf(userID uuid.UUID) []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cart.Line(nil), s.carts[userID]...)
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memStore) storedItems(orderID uuid.UUID) []order.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []order.OrderItem
	for _, item := range s.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out
}

func (s *memStore) record(ctx context.Context, undo func()) {
	if l, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		l.undo = append(l.undo, undo)
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	l := &undoLog{}
	err := fn(context.WithValue(ctx, undoKey{}, l))

	if err != nil {
		s.mu.Lock()
		for i := len(l.undo) - 1; i >= 0; i-- {
			l.undo[i]()
		}
		s.mu.Unlock()
	}

	for _, release := range l.release {
		release()
	}
	return err
}

func (s *memStore) GetBookByID(_ context.Context, id uuid.UUID) (*catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	cp := *book
	return &cp, nil
}

func (s *memStore) GetBookForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	return s.GetBookByID(ctx, id)
}

func (s *memStore) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decrementCalls++
	if s.failDecrementAt > 0 && s.decrementCalls == s.failDecrementAt {
		return nil, errInjected
	}

	book, ok := s.books[id]
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	if book.Stock < qty {
		return nil, &catalog.InsufficientStockError{BookID: id, Title: book.Title, Available: book.Stock, Requested: qty}
	}

	book.Stock -= qty
	s.record(ctx, func() { book.Stock += qty })

	cp := *book
	return &cp, nil
}

func (s *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]cart.Line, error) {
	return s.cartOf(userID), nil
}

func (s *memStore) LockByUser(ctx context.Context, userID uuid.UUID) ([]cart.Line, error) {
	s.cartLocksMu.Lock()
	lock, ok := s.cartLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.cartLocks[userID] = lock
	}
	s.cartLocksMu.Unlock()

	lock.Lock()
	if l, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		l.release = append(l.release, lock.Unlock)
	} else {
		lock.Unlock()
	}

	return s.cartOf(userID), nil
}

func (s *memStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.carts[userID]
	delete(s.carts, userID)
	s.record(ctx, func() { s.carts[userID] = removed })

	return int64(len(removed)), nil
}

func (s *memStore) CreateOrder(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uuid.Must(uuid.NewV4())
	s.orders[o.ID] = *o
	id := o.ID
	s.record(ctx, func() { delete(s.orders, id) })
	return nil
}

func (s *memStore) CreateItem(ctx context.Context, item *order.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.Must(uuid.NewV4())
	s.items = append(s.items, *item)
	id := item.ID
	s.record(ctx, func() {
		for i := range s.items {
			if s.items[i].ID == id {
				s.items = append(s.items[:i], s.items[i+1:]...)
				return
			}
		}
	})
	return nil
}
