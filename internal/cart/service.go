package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/db"
)

type BookReader interface {
	GetBookByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error)
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID, bookID uuid.UUID, qty int) (*Line, error)
	UpdateItem(ctx context.Context, userID, lineID uuid.UUID, qty int) (*Line, error)
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error
}

type service struct {
	repo  Repository
	books BookReader
	tx    db.Transactor
}

func NewService(repo Repository, books BookReader, tx db.Transactor) Service {
	return &service{repo: repo, books: books, tx: tx}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart")
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}
	return NewCart(lines), nil
}

func (s *service) AddItem(ctx context.Context, userID, bookID uuid.UUID, qty int) (*Line, error) {
	if qty <= 0 {
		return nil, catalog.ErrInvalidQuantity
	}

	var line *Line
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		book, err := s.books.GetBookByID(ctx, bookID)
		if err != nil {
			return err
		}

		lines, err := s.repo.LockByUser(ctx, userID)
		if err != nil {
			return err
		}

		existing := 0
		for _, l := range lines {
			if l.BookID == bookID {
				existing = l.Quantity
				break
			}
		}

		if err := ValidateAdd(book, existing, qty); err != nil {
			return err
		}

		line = &Line{UserID: userID, BookID: bookID, Quantity: qty}
		if err := s.repo.AddLine(ctx, line); err != nil {
			return err
		}
		line.Book = book
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, userID, "add item to cart")
	}

	log.Info().Stringer("user_id", userID).Stringer("book_id", bookID).Int("quantity", line.Quantity).Msg("service: cart line saved")
	return line, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, qty int) (*Line, error) {
	var line *Line
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockByUser(ctx, userID); err != nil {
			return err
		}

		l, err := s.repo.GetLine(ctx, lineID)
		if err != nil {
			return err
		}

		book, err := s.books.GetBookByID(ctx, l.BookID)
		if err != nil {
			return err
		}

		if err := ValidateUpdate(l, userID, book, qty); err != nil {
			return err
		}

		if err := s.repo.UpdateQuantity(ctx, lineID, qty); err != nil {
			return err
		}

		l.Quantity = qty
		l.Book = book
		line = l
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, userID, "update cart item")
	}

	return line, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockByUser(ctx, userID); err != nil {
			return err
		}

		l, err := s.repo.GetLine(ctx, lineID)
		if err != nil && !errors.Is(err, ErrItemNotFound) {
			return err
		}

		if err := ValidateRemove(l, userID); err != nil {
			return err
		}

		return s.repo.DeleteLine(ctx, lineID)
	})
	if err != nil {
		return s.wrap(err, userID, "remove cart item")
	}

	return nil
}

// wrap passes domain errors through untouched and hides storage details behind op.
func (s *service) wrap(err error, userID uuid.UUID, op string) error {
	switch {
	case errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, catalog.ErrBookNotFound),
		errors.Is(err, catalog.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInsufficientStock):
		log.Warn().Err(err).Stringer("user_id", userID).Msgf("service: cannot %s", op)
		return err
	default:
		log.Error().Err(err).Stringer("user_id", userID).Msgf("service: failed to %s", op)
		return fmt.Errorf("service: failed to %s: %w", op, err)
	}
}
