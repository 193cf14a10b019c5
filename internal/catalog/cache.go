package catalog

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

// CachedRepository mantiene en un LRU los libros leídos recientemente, delante
// de otro Repository. Solo se cachean libros presentes; borrar los expulsa.
type CachedRepository struct {
	// mu cubre la llamada al store y la actualización del LRU juntas, para que
	// un Get en curso no reinserte un libro ya borrado.
	mu    sync.Mutex
	next  Repository
	books *lru.Cache[int64, Book]
}

func NewCachedRepository(next Repository, size int) (*CachedRepository, error) {
	c, err := lru.New[int64, Book](size)
	if err != nil {
		return nil, err
	}
	return &CachedRepository{next: next, books: c}, nil
}

func (r *CachedRepository) List(ctx context.Context) ([]Book, error) {
	return r.next.List(ctx)
}

func (r *CachedRepository) Create(ctx context.Context, nb NewBook) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.next.Create(ctx, nb)
	if err != nil {
		return Book{}, err
	}
	r.books.Add(b.ID, b)
	return b, nil
}

func (r *CachedRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.next.Delete(ctx, id)
	r.books.Remove(id)
	return err
}

func (r *CachedRepository) Get(ctx context.Context, id int64) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books.Get(id); ok {
		return b, nil
	}
	b, err := r.next.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	r.books.Add(id, b)
	return b, nil
}

func (r *CachedRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Len informa cuántos libros hay en caché.
func (r *CachedRepository) Len() int { return r.books.Len() }
