package stats_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/bookstore/internal/cart"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/order"
	"github.com/vasiliy-maslov/bookstore/internal/stats"
	"github.com/vasiliy-maslov/bookstore/internal/testutil/pgtest"
)

func TestReporter_Statistics(t *testing.T) {
	pg := pgtest.Postgres(t)
	ctx := context.Background()

	books := catalog.NewRepository(pg.Pool)
	carts := cart.NewRepository(pg.Pool)
	orders := order.NewRepository(pg.Pool)
	wf := order.NewWorkflow(pg, books, carts, orders)

	popular := &catalog.Book{Title: "Popular", Author: "A", Category: "Fiction", Price: decimal.RequireFromString("10.00"), Stock: 50}
	niche := &catalog.Book{Title: "Niche", Author: "B", Category: "Poetry", Price: decimal.RequireFromString("7.25"), Stock: 50}
	require.NoError(t, books.CreateBook(ctx, popular))
	require.NoError(t, books.CreateBook(ctx, niche))

	buyer := pgtest.InsertUser(t, pg.Pool, "buyer")
	checkout := func(lines map[*catalog.Book]int) *order.Order {
		for b, qty := range lines {
			require.NoError(t, carts.AddLine(ctx, &cart.Line{UserID: buyer, BookID: b.ID, Quantity: qty}))
		}
		o, err := wf.CreateOrder(ctx, buyer, "221B Baker Street")
		require.NoError(t, err)
		return o
	}

	paid := checkout(map[*catalog.Book]int{popular: 3, niche: 1})
	unpaid := checkout(map[*catalog.Book]int{popular: 2})
	checkout(map[*catalog.Book]int{niche: 5})

	require.NoError(t, orders.UpdateOrderStatus(ctx, paid.ID, order.StatusCompleted, order.PaymentPaid))
	require.NoError(t, orders.UpdateOrderStatus(ctx, unpaid.ID, order.StatusCompleted, order.PaymentPending))

	got, err := stats.NewReporter(pg.SQLX()).Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, "37.25", got.TotalRevenue.StringFixed(2))
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 2, got.CompletedOrders)
	assert.Equal(t, 1, got.PendingOrders)
	assert.Equal(t, map[string]int{"completed": 2, "pending": 1}, got.OrdersByStatus)
	assert.Equal(t, 2, got.TotalBooks)
	assert.Equal(t, 1, got.TotalUsers)

	require.Len(t, got.TopBooks, 2)
	assert.Equal(t, popular.ID, got.TopBooks[0].ID)
	assert.Equal(t, 5, got.TopBooks[0].TotalSold)
	assert.Equal(t, niche.ID, got.TopBooks[1].ID)
	assert.Equal(t, 1, got.TopBooks[1].TotalSold)
}

func TestReporter_Statistics_Empty(t *testing.T) {
	pg := pgtest.Postgres(t)

	got, err := stats.NewReporter(pg.SQLX()).Statistics(context.Background())
	require.NoError(t, err)
	assert.True(t, got.TotalRevenue.IsZero())
	assert.Zero(t, got.TotalOrders)
	assert.Empty(t, got.TopBooks)
	assert.NotNil(t, got.TopBooks)
}
