// Package user registra usuarios y les abre su carrito.
package user

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

// Registry guarda los usuarios. Create asigna como id la cantidad de
// registros previos más uno.
type Registry interface {
	Create(ctx context.Context, name, email string) (User, error)
	// Remove deshace el Create más reciente; id debe ser el último asignado.
	Remove(ctx context.Context, id int64) error
}

type memoryRegistry struct {
	mu    sync.RWMutex
	users []User
}

func NewMemoryRegistry() Registry { return &memoryRegistry{} }

func (r *memoryRegistry) Create(_ context.Context, name, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := User{ID: int64(len(r.users)) + 1, Name: name, Email: email, CreatedAt: time.Now().UTC()}
	r.users = append(r.users, u)
	return u, nil
}

func (r *memoryRegistry) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 1 || id != int64(len(r.users)) {
		return fmt.Errorf("user %d is not the latest registration: %w", id, apperr.ErrUserNotFound)
	}
	r.users = r.users[:len(r.users)-1]
	return nil
}

type sqliteRegistry struct{ db *sql.DB }

func NewSQLiteRegistry(db *sql.DB) Registry { return &sqliteRegistry{db: db} }

func (r *sqliteRegistry) Create(ctx context.Context, name, email string) (User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	u := User{Name: name, Email: email, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1)+1 FROM users`).Scan(&u.ID); err != nil {
		return User{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users(id,name,email,created_unix) VALUES(?,?,?,?)`,
		u.ID, u.Name, u.Email, u.CreatedAt.Unix()); err != nil {
		return User{}, err
	}
	if err := tx.Commit(); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *sqliteRegistry) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id=? AND id=(SELECT MAX(id) FROM users)`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d is not the latest registration: %w", id, apperr.ErrUserNotFound)
	}
	return nil
}
