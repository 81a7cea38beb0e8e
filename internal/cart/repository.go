package cart

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/db"
)

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Line, error)
	LockByUser(ctx context.Context, userID uuid.UUID) ([]Line, error)
	GetLine(ctx context.Context, id uuid.UUID) (*Line, error)
	AddLine(ctx context.Context, line *Line) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type postgresRepository struct {
	db db.Executor
}

func NewRepository(conn db.Executor) Repository {
	return &postgresRepository{db: conn}
}

// ListByUser returns the user's lines with a summary of each book, oldest first.
func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	query := `
		SELECT c.id, c.user_id, c.book_id, c.quantity, c.created_at,
			b.title, b.author, b.category, b.price, b.stock, b.image_url
		FROM cart_items c
		JOIN books b ON b.id = c.book_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := db.Conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var (
			l Line
			b catalog.Book
		)
		err := rows.Scan(
			&l.ID, &l.UserID, &l.BookID, &l.Quantity, &l.CreatedAt,
			&b.Title, &b.Author, &b.Category, &b.Price, &b.Stock, &b.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart line for user %s: %w", userID, err)
		}
		b.ID = l.BookID
		l.Book = &b
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart for user %s: %w", userID, err)
	}

	return lines, nil
}

// LockByUser serializes work on one user's cart for the rest of the transaction
// and returns the locked lines, oldest first. It must run inside db.WithinTx.
func (r *postgresRepository) LockByUser(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	conn := db.Conn(ctx, r.db)

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey(userID)); err != nil {
		return nil, fmt.Errorf("repository: failed to lock cart of user %s: %w", userID, err)
	}

	query := `
		SELECT id, user_id, book_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at, id
		FOR UPDATE
	`
	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query locked cart for user %s: %w", userID, err)
	}

	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[Line])
	if err != nil {
		return nil, fmt.Errorf("repository: failed to collect locked cart for user %s: %w", userID, err)
	}

	return lines, nil
}

func (r *postgresRepository) GetLine(ctx context.Context, id uuid.UUID) (*Line, error) {
	query := `SELECT id, user_id, book_id, quantity, created_at FROM cart_items WHERE id = $1`

	var l Line
	err := db.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(&l.ID, &l.UserID, &l.BookID, &l.Quantity, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart line %s: %w", id, err)
	}

	return &l, nil
}

// AddLine inserts the line or adds its quantity to the user's existing line for the same book.
func (r *postgresRepository) AddLine(ctx context.Context, line *Line) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate cart line ID: %w", err)
	}

	query := `
		INSERT INTO cart_items (id, user_id, book_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, created_at
	`
	err = db.Conn(ctx, r.db).QueryRow(ctx, query, id, line.UserID, line.BookID, line.Quantity, time.Now().UTC()).
		Scan(&line.ID, &line.Quantity, &line.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert cart line: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, qty)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart line %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart line %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to clear cart of user %s: %w", userID, err)
	}
	return cmdTag.RowsAffected(), nil
}

func advisoryKey(userID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(userID[:8]))
}
