// Package cart maneja los carritos por usuario y los valoriza contra el catálogo.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ahinestrog/librosapi/internal/apperr"
	"github.com/ahinestrog/librosapi/internal/catalog"
	"github.com/ahinestrog/librosapi/internal/events"
)

// Catalog es la parte de lectura del catálogo con la que se valoriza.
type Catalog interface {
	Get(ctx context.Context, id int64) (catalog.Book, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// Item es una línea resuelta contra el registro actual del libro.
type Item struct {
	Book     catalog.Book
	Quantity int
}

// View es el contenido valorizado de un carrito.
type View struct {
	Items []Item
	Total float64
}

type Service struct {
	mu      sync.RWMutex
	store   Store
	catalog Catalog
	events  events.Publisher
}

func NewService(store Store, books Catalog, pub events.Publisher) *Service {
	return &Service{store: store, catalog: books, events: pub}
}

// View resuelve cada línea del carrito en el orden guardado. Las líneas cuyo
// libro ya no existe quedan fuera de los items y del total.
func (s *Service) View(ctx context.Context, userID int64) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, err := s.store.Lines(ctx, userID)
	if err != nil {
		return View{}, userErr(err)
	}

	view := View{Items: make([]Item, 0, len(lines))}
	skipped := 0
	for _, l := range lines {
		b, err := s.catalog.Get(ctx, l.BookID)
		if errors.Is(err, apperr.ErrNotFound) {
			skipped++
			continue
		}
		if err != nil {
			return View{}, err
		}
		view.Items = append(view.Items, Item{Book: b, Quantity: l.Quantity})
		view.Total += b.Price * float64(l.Quantity)
	}

	zerolog.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("items", len(view.Items)).
		Int("dangling", skipped).
		Float64("total", view.Total).
		Msg("cart viewed")
	return view, nil
}

// Add agrega una línea nueva. Se valida el usuario antes que el libro y la
// cantidad se guarda tal cual. Nunca se fusionan líneas del mismo libro.
func (s *Service) Add(ctx context.Context, userID, bookID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrUserNotFound
	}
	ok, err = s.catalog.Exists(ctx, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrBookNotFound
	}

	if err := s.store.Append(ctx, userID, Line{BookID: bookID, Quantity: quantity}); err != nil {
		return userErr(err)
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Int64("book_id", bookID).Int("quantity", quantity).Msg("cart item added")
	s.publish(ctx, events.RKCartItemAdded, events.CartItemAdded{UserID: userID, BookID: bookID, Quantity: quantity})
	return nil
}

// Clear vacía el carrito. Vaciar uno vacío no hace nada.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx, userID); err != nil {
		return userErr(err)
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Msg("cart cleared")
	s.publish(ctx, events.RKCartCleared, events.CartCleared{UserID: userID})
	return nil
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("rk", key).Msg("publish failed")
	}
}

// userErr reduce los not-found del store al error de usuario.
func userErr(err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrUserNotFound
	}
	return err
}
