// Package catalog guarda los libros y publica los eventos del catálogo.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

// Repository es el store del catálogo. El id nuevo es el máximo actual
// más uno, o 1 si el catálogo está vacío.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, nb NewBook) (Book, error)
	// Delete falla con apperr.ErrBookNotFound si no hay libro con ese id.
	Delete(ctx context.Context, id int64) error
	// Get falla con apperr.ErrBookNotFound si no hay libro con ese id.
	Get(ctx context.Context, id int64) (Book, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type memoryRepo struct {
	mu    sync.RWMutex
	books []Book
	index map[int64]int
	maxID int64
}

func NewMemoryRepo() Repository {
	return &memoryRepo{index: map[int64]int{}}
}

func (r *memoryRepo) List(_ context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Book, len(r.books))
	copy(out, r.books)
	return out, nil
}

func (r *memoryRepo) Create(_ context.Context, nb NewBook) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := nb.withID(r.maxID + 1)
	r.index[b.ID] = len(r.books)
	r.books = append(r.books, b)
	r.maxID = b.ID
	return b, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("delete book %d: %w", id, apperr.ErrBookNotFound)
	}
	r.books = append(r.books[:i], r.books[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.books); j++ {
		r.index[r.books[j].ID] = j
	}
	r.maxID = 0
	for _, b := range r.books {
		r.maxID = max(r.maxID, b.ID)
	}
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Book{}, fmt.Errorf("book %d: %w", id, apperr.ErrBookNotFound)
	}
	return r.books[i], nil
}

func (r *memoryRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[id]
	return ok, nil
}
