package banner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/bookstore/internal/db"
)

type Repository interface {
	Create(ctx context.Context, b *Banner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Banner, error)
	Update(ctx context.Context, b *Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, position Position) ([]Banner, error)
	List(ctx context.Context, page, perPage int) ([]Banner, int, error)
}

const bannerColumns = `id, title, description, image_url, link, bg_color, text_color, position,
	display_order, is_active, created_at, updated_at`

type postgresRepository struct {
	db db.Executor
}

func NewRepository(conn db.Executor) Repository {
	return &postgresRepository{db: conn}
}

func (r *postgresRepository) Create(ctx context.Context, b *Banner) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate banner ID: %w", err)
		}
		b.ID = id
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `
		INSERT INTO banners (` + bannerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := db.Conn(ctx, r.db).Exec(ctx, query,
		b.ID, b.Title, b.Description, b.ImageURL, b.Link, b.BgColor, b.TextColor,
		string(b.Position), b.DisplayOrder, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert banner: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Banner, error) {
	rows, err := db.Conn(ctx, r.db).Query(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select banner %s: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Banner])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to scan banner %s: %w", id, err)
	}
	return b, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *Banner) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE banners
		SET title = $2, description = $3, image_url = $4, link = $5, bg_color = $6,
			text_color = $7, position = $8, display_order = $9, is_active = $10, updated_at = $11
		WHERE id = $1
	`
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, query,
		b.ID, b.Title, b.Description, b.ImageURL, b.Link, b.BgColor, b.TextColor,
		string(b.Position), b.DisplayOrder, b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update banner %s: %w", b.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete banner %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns active banners by display order; an empty position means all of them.
func (r *postgresRepository) ListActive(ctx context.Context, position Position) ([]Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners WHERE is_active`
	args := []any{}
	if position != "" {
		query += ` AND position = $1`
		args = append(args, string(position))
	}
	query += ` ORDER BY display_order, created_at DESC`

	return r.collect(ctx, query, args...)
}

func (r *postgresRepository) List(ctx context.Context, page, perPage int) ([]Banner, int, error) {
	var total int
	if err := db.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM banners`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count banners: %w", err)
	}

	banners, err := r.collect(ctx,
		`SELECT `+bannerColumns+` FROM banners ORDER BY display_order, created_at DESC LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	return banners, total, nil
}

func (r *postgresRepository) collect(ctx context.Context, query string, args ...any) ([]Banner, error) {
	rows, err := db.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query banners: %w", err)
	}

	banners, err := pgx.CollectRows(rows, pgx.RowToStructByName[Banner])
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan banners: %w", err)
	}
	if banners == nil {
		banners = []Banner{}
	}
	return banners, nil
}
