package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ahinestrog/librosapi/internal/events"
)

// CartCreator abre el carrito vacío de un usuario recién registrado.
type CartCreator interface {
	Create(ctx context.Context, userID int64) error
}

type Service struct {
	mu     sync.Mutex
	repo   Registry
	carts  CartCreator
	events events.Publisher
}

func NewService(repo Registry, carts CartCreator, pub events.Publisher) *Service {
	return &Service{repo: repo, carts: carts, events: pub}
}

// Register guarda el usuario y crea su carrito vacío. Si el carrito falla, el
// usuario se elimina para que el siguiente registro reciba el mismo id.
func (s *Service) Register(ctx context.Context, name, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.repo.Create(ctx, name, email)
	if err != nil {
		return User{}, err
	}
	if err := s.carts.Create(ctx, u.ID); err != nil {
		err = fmt.Errorf("create cart for user %d: %w", u.ID, err)
		if rerr := s.repo.Remove(ctx, u.ID); rerr != nil {
			return User{}, errors.Join(err, fmt.Errorf("undo user %d: %w", u.ID, rerr))
		}
		return User{}, err
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", u.ID).Msg("user registered")

	if s.events != nil {
		if err := s.events.Publish(ctx, events.RKUserRegistered,
			events.UserRegistered{UserID: u.ID, Name: u.Name, Email: u.Email}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("publish user.registered failed")
		}
	}
	return u, nil
}
