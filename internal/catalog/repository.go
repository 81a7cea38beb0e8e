package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/db"
)

type Repository interface {
	CreateBook(ctx context.Context, book *Book) error
	GetBookByID(ctx context.Context, id uuid.UUID) (*Book, error)
	GetBookForUpdate(ctx context.Context, id uuid.UUID) (*Book, error)
	UpdateBook(ctx context.Context, book *Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) error
	SearchBooks(ctx context.Context, params SearchParams) ([]Book, int, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListAuthors(ctx context.Context) ([]string, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*Book, error)
}

const bookColumns = `id, title, author, category, price, stock, description, image_url, publisher,
	publish_date, distributor, dimensions, pages, weight, created_at, updated_at`

type postgresRepository struct {
	db db.Executor
}

func NewRepository(conn db.Executor) Repository {
	return &postgresRepository{db: conn}
}

func scanBook(row pgx.Row) (*Book, error) {
	var b Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Category,
		&b.Price,
		&b.Stock,
		&b.Description,
		&b.ImageURL,
		&b.Publisher,
		&b.PublishDate,
		&b.Distributor,
		&b.Dimensions,
		&b.Pages,
		&b.Weight,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) CreateBook(ctx context.Context, book *Book) error {
	if book.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate book ID: %w", err)
		}
		book.ID = id
	}

	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := db.Conn(ctx, r.db).Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Category,
		book.Price,
		book.Stock,
		book.Description,
		book.ImageURL,
		book.Publisher,
		book.PublishDate,
		book.Distributor,
		book.Dimensions,
		book.Pages,
		book.Weight,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetBookByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("repository: failed to select book by id %s: %w", id, err)
	}

	return book, nil
}

// GetBookForUpdate reads the book and holds its row lock until the surrounding transaction ends.
func (r *postgresRepository) GetBookForUpdate(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`

	book, err := scanBook(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("repository: failed to lock book %s: %w", id, err)
	}

	return book, nil
}

func (r *postgresRepository) UpdateBook(ctx context.Context, book *Book) error {
	book.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $2, author = $3, category = $4, price = $5, stock = $6, description = $7,
			image_url = $8, publisher = $9, publish_date = $10, distributor = $11, dimensions = $12,
			pages = $13, weight = $14, updated_at = $15
		WHERE id = $1
	`
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Category,
		book.Price,
		book.Stock,
		book.Description,
		book.ImageURL,
		book.Publisher,
		book.PublishDate,
		book.Distributor,
		book.Dimensions,
		book.Pages,
		book.Weight,
		book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update book %s: %w", book.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrBookInUse
		}
		return fmt.Errorf("repository: failed to delete book %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *postgresRepository) SearchBooks(ctx context.Context, params SearchParams) ([]Book, int, error) {
	var (
		conds []string
		args  []any
	)
	if params.Search != "" {
		args = append(args, "%"+escapeLike(params.Search)+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if params.Category != "" {
		args = append(args, params.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.Author != "" {
		args = append(args, "%"+escapeLike(params.Author)+"%")
		conds = append(conds, fmt.Sprintf("author ILIKE $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	conn := db.Conn(ctx, r.db)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count books: %w", err)
	}

	args = append(args, params.PerPage, params.Offset())
	query := fmt.Sprintf(`SELECT %s FROM books%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		bookColumns, where, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to search books: %w", err)
	}
	defer rows.Close()

	books := make([]Book, 0, params.PerPage)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating books: %w", err)
	}

	return books, total, nil
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *postgresRepository) ListAuthors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "author")
}

// column is always one of the fixed names above, never user input.
func (r *postgresRepository) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM books WHERE %[1]s <> '' ORDER BY %[1]s`, column)

	rows, err := db.Conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list %s values: %w", column, err)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("repository: failed to collect %s values: %w", column, err)
	}

	return values, nil
}

// DecrementStock subtracts qty only while enough stock remains.
func (r *postgresRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*Book, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	conn := db.Conn(ctx, r.db)

	query := `
		UPDATE books
		SET stock = stock - $2, updated_at = $3
		WHERE id = $1 AND stock >= $2
		RETURNING ` + bookColumns
	book, err := scanBook(conn.QueryRow(ctx, query, id, qty, time.Now().UTC()))
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repository: failed to decrement stock of book %s: %w", id, err)
	}

	current, getErr := r.GetBookByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	log.Warn().Stringer("book_id", id).Int("stock", current.Stock).Int("requested", qty).Msg("repository: stock decrement rejected")
	return nil, &InsufficientStockError{
		BookID:    current.ID,
		Title:     current.Title,
		Available: current.Stock,
		Requested: qty,
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
