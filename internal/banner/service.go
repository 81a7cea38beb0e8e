package banner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Create(ctx context.Context, b *Banner) (*Banner, error)
	Get(ctx context.Context, id uuid.UUID) (*Banner, error)
	Update(ctx context.Context, id uuid.UUID, update Update) (*Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Toggle(ctx context.Context, id uuid.UUID) (*Banner, error)
	ListActive(ctx context.Context, position Position) ([]Banner, error)
	List(ctx context.Context, page, perPage int) (*Page, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, b *Banner) (*Banner, error) {
	Normalize(b)
	if err := Validate(b); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		log.Error().Err(err).Msg("service: failed to create banner in repository")
		return nil, fmt.Errorf("service: failed to create banner: %w", err)
	}

	log.Info().Stringer("banner_id", b.ID).Str("position", string(b.Position)).Msg("service: banner created")
	return b, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Banner, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("banner_id", id).Msg("service: failed to get banner")
		return nil, fmt.Errorf("service: failed to get banner: %w", err)
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, update Update) (*Banner, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(b)
	Normalize(b)
	if err := Validate(b); err != nil {
		return nil, err
	}

	return b, s.save(ctx, b)
}

func (s *service) Toggle(ctx context.Context, id uuid.UUID) (*Banner, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	b.IsActive = !b.IsActive
	return b, s.save(ctx, b)
}

func (s *service) save(ctx context.Context, b *Banner) error {
	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("banner_id", b.ID).Msg("service: failed to update banner")
		return fmt.Errorf("service: failed to update banner: %w", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("banner_id", id).Msg("service: failed to delete banner")
		return fmt.Errorf("service: failed to delete banner: %w", err)
	}
	return nil
}

func (s *service) ListActive(ctx context.Context, position Position) ([]Banner, error) {
	if position != "" && !position.Valid() {
		return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidBanner, position)
	}

	banners, err := s.repo.ListActive(ctx, position)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list active banners")
		return nil, fmt.Errorf("service: failed to list banners: %w", err)
	}
	return banners, nil
}

func (s *service) List(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	banners, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list banners")
		return nil, fmt.Errorf("service: failed to list banners: %w", err)
	}

	return &Page{
		Banners: banners,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   (total + perPage - 1) / perPage,
	}, nil
}
