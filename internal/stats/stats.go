// Package stats builds the admin dashboard report.
package stats

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const topBooksLimit = 10

type TopBook struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	TotalSold int       `json:"total_sold" db:"total_sold"`
}

type Statistics struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
	CompletedOrders int             `json:"completed_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	OrdersByStatus  map[string]int  `json:"orders_by_status"`
	TotalBooks      int             `json:"total_books"`
	TotalUsers      int             `json:"total_users"`
	TopBooks        []TopBook       `json:"top_books"`
}

type Reporter interface {
	Statistics(ctx context.Context) (*Statistics, error)
}

type sqlxReporter struct {
	db *sqlx.DB
}

func NewReporter(db *sqlx.DB) Reporter {
	return &sqlxReporter{db: db}
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func (r *sqlxReporter) Statistics(ctx context.Context) (*Statistics, error) {
	s := &Statistics{OrdersByStatus: make(map[string]int)}

	err := r.db.GetContext(ctx, &s.TotalRevenue, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status = 'completed' AND payment_status = 'paid'
	`)
	if err != nil {
		return nil, r.fail("revenue", err)
	}

	var counts []statusCount
	if err := r.db.SelectContext(ctx, &counts, `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`); err != nil {
		return nil, r.fail("orders by status", err)
	}
	for _, c := range counts {
		s.OrdersByStatus[c.Status] = c.Count
		s.TotalOrders += c.Count
	}
	s.PendingOrders = s.OrdersByStatus["pending"]
	s.ConfirmedOrders = s.OrdersByStatus["confirmed"]
	s.CompletedOrders = s.OrdersByStatus["completed"]
	s.CancelledOrders = s.OrdersByStatus["cancelled"]

	if err := r.db.GetContext(ctx, &s.TotalBooks, `SELECT COUNT(*) FROM books`); err != nil {
		return nil, r.fail("book count", err)
	}
	if err := r.db.GetContext(ctx, &s.TotalUsers, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, r.fail("user count", err)
	}

	s.TopBooks = make([]TopBook, 0, topBooksLimit)
	err = r.db.SelectContext(ctx, &s.TopBooks, `
		SELECT b.id, b.title, b.author, SUM(i.quantity) AS total_sold
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN books b ON b.id = i.book_id
		WHERE o.status = 'completed'
		GROUP BY b.id, b.title, b.author
		ORDER BY total_sold DESC, b.title
		LIMIT $1
	`, topBooksLimit)
	if err != nil {
		return nil, r.fail("top books", err)
	}

	return s, nil
}

func (r *sqlxReporter) fail(part string, err error) error {
	log.Error().Err(err).Str("part", part).Msg("repository: failed to build statistics")
	return fmt.Errorf("repository: failed to query %s: %w", part, err)
}
