package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepo espera una base ya migrada por sqlitedb.Open.
func NewSQLiteRepo(db *sql.DB) Repository { return &sqliteRepo{db: db} }

func (r *sqliteRepo) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,title,author,price FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Price); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *sqliteRepo) Create(ctx context.Context, nb NewBook) (Book, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Book{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id),0)+1 FROM books`).Scan(&id); err != nil {
		return Book{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO books(id,title,author,price,created_unix) VALUES(?,?,?,?,?)`,
		id, nb.Title, nb.Author, nb.Price, time.Now().Unix()); err != nil {
		return Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return Book{}, err
	}
	return nb.withID(id), nil
}

func (r *sqliteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete book %d: %w", id, apperr.ErrBookNotFound)
	}
	return nil
}

func (r *sqliteRepo) Get(ctx context.Context, id int64) (Book, error) {
	var b Book
	err := r.db.QueryRowContext(ctx, `SELECT id,title,author,price FROM books WHERE id=?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, fmt.Errorf("book %d: %w", id, apperr.ErrBookNotFound)
	}
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *sqliteRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id=?)`, id).Scan(&ok)
	return ok, err
}
