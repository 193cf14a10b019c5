package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ahinestrog/librosapi/internal/events"
)

type Service struct {
	repo   Repository
	events events.Publisher
}

// NewService arma el catálogo; pub puede ser nil.
func NewService(repo Repository, pub events.Publisher) *Service {
	return &Service{repo: repo, events: pub}
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("rk", key).Msg("publish failed")
	}
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) Create(ctx context.Context, nb NewBook) (Book, error) {
	b, err := s.repo.Create(ctx, nb)
	if err != nil {
		return Book{}, err
	}
	zerolog.Ctx(ctx).Info().Int64("book_id", b.ID).Float64("price", b.Price).Msg("book created")
	s.publish(ctx, events.RKBookCreated, events.BookCreated{ID: b.ID, Title: b.Title, Author: b.Author, Price: b.Price})
	return b, nil
}

// Delete elimina un libro. Las líneas de carrito que lo referencian se quedan.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("book_id", id).Msg("book deleted")
	s.publish(ctx, events.RKBookDeleted, events.BookDeleted{ID: id})
	return nil
}

// Seed inserta libros solo si el catálogo está vacío y devuelve cuántos agregó.
func (s *Service) Seed(ctx context.Context, books []NewBook) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, nb := range books {
		if _, err := s.repo.Create(ctx, nb); err != nil {
			return 0, err
		}
	}
	return len(books), nil
}
