package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateBook(ctx context.Context, book *Book) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, update BookUpdate) (*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	SearchBooks(ctx context.Context, params SearchParams) (*Page, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListAuthors(ctx context.Context) ([]string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBook(ctx context.Context, book *Book) (*Book, error) {
	if err := ValidateBook(book); err != nil {
		log.Warn().Err(err).Msg("service: rejected book")
		return nil, err
	}

	book.ID = uuid.Nil
	if err := s.repo.CreateBook(ctx, book); err != nil {
		log.Error().Err(err).Msg("service: failed to create book in repository")
		return nil, fmt.Errorf("service: failed to create book: %w", err)
	}

	log.Info().Stringer("book_id", book.ID).Str("title", book.Title).Msg("service: book created")
	return book, nil
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		log.Error().Err(err).Stringer("book_id", id).Msg("service: failed to fetch book")
		return nil, fmt.Errorf("service: failed to fetch book: %w", err)
	}
	return book, nil
}

func (s *service) UpdateBook(ctx context.Context, id uuid.UUID, update BookUpdate) (*Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(book)
	if err := ValidateBook(book); err != nil {
		log.Warn().Err(err).Stringer("book_id", id).Msg("service: rejected book update")
		return nil, err
	}

	if err := s.repo.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		log.Error().Err(err).Stringer("book_id", id).Msg("service: failed to update book in repository")
		return nil, fmt.Errorf("service: failed to update book: %w", err)
	}

	return book, nil
}

func (s *service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteBook(ctx, id)
	switch {
	case err == nil:
		log.Info().Stringer("book_id", id).Msg("service: book deleted")
		return nil
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrBookInUse):
		log.Warn().Err(err).Stringer("book_id", id).Msg("service: book not deleted")
		return err
	default:
		log.Error().Err(err).Stringer("book_id", id).Msg("service: failed to delete book in repository")
		return fmt.Errorf("service: failed to delete book: %w", err)
	}
}

func (s *service) SearchBooks(ctx context.Context, params SearchParams) (*Page, error) {
	params.Search = strings.TrimSpace(params.Search)
	params.Category = strings.TrimSpace(params.Category)
	params.Author = strings.TrimSpace(params.Author)
	params.Normalize()

	books, total, err := s.repo.SearchBooks(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to search books")
		return nil, fmt.Errorf("service: failed to search books: %w", err)
	}

	return NewPage(books, total, params), nil
}

func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) ListAuthors(ctx context.Context) ([]string, error) {
	authors, err := s.repo.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list authors: %w", err)
	}
	return authors, nil
}
