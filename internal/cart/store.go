package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

// Line es una entrada del carrito. BookID es una referencia lógica y puede
// sobrevivir al libro que nombra.
type Line struct {
	BookID   int64
	Quantity int
}

// Store guarda una secuencia ordenada de líneas por usuario. Todo método salvo
// Create y Exists falla con apperr.ErrUserNotFound para usuarios desconocidos.
type Store interface {
	// Create abre un carrito vacío; uno existente no se toca.
	Create(ctx context.Context, userID int64) error
	Exists(ctx context.Context, userID int64) (bool, error)
	Lines(ctx context.Context, userID int64) ([]Line, error)
	Append(ctx context.Context, userID int64, line Line) error
	Clear(ctx context.Context, userID int64) error
}

type memoryStore struct {
	mu    sync.RWMutex
	carts map[int64][]Line
}

func NewMemoryStore() Store {
	return &memoryStore{carts: map[int64][]Line{}}
}

func (s *memoryStore) Create(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[userID]; !ok {
		s.carts[userID] = []Line{}
	}
	return nil
}

func (s *memoryStore) Exists(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.carts[userID]
	return ok, nil
}

func (s *memoryStore) Lines(_ context.Context, userID int64) ([]Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines, ok := s.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart %d: %w", userID, apperr.ErrUserNotFound)
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *memoryStore) Append(_ context.Context, userID int64, line Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines, ok := s.carts[userID]
	if !ok {
		return fmt.Errorf("cart %d: %w", userID, apperr.ErrUserNotFound)
	}
	s.carts[userID] = append(lines, line)
	return nil
}

func (s *memoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[userID]; !ok {
		return fmt.Errorf("cart %d: %w", userID, apperr.ErrUserNotFound)
	}
	s.carts[userID] = []Line{}
	return nil
}
