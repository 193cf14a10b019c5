package cart

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

type sqliteStore struct{ db *sql.DB }

// NewSQLiteStore espera una base ya migrada por sqlitedb.Open.
func NewSQLiteStore(db *sql.DB) Store { return &sqliteStore{db: db} }

func (s *sqliteStore) Create(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO carts(user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`, userID)
	return err
}

func (s *sqliteStore) Exists(ctx context.Context, userID int64) (bool, error) {
	return cartExists(ctx, s.db, userID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func cartExists(ctx context.Context, q queryer, userID int64) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM carts WHERE user_id=?)`, userID).Scan(&ok)
	return ok, err
}

func (s *sqliteStore) Lines(ctx context.Context, userID int64) ([]Line, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := mustExist(ctx, tx, userID); err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT book_id, quantity FROM cart_lines WHERE user_id=? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.BookID, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Append(ctx context.Context, userID int64, line Line) error {
	return s.inTx(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_lines(user_id, book_id, quantity) VALUES (?, ?, ?)`,
			userID, line.BookID, line.Quantity)
		return err
	})
}

func (s *sqliteStore) Clear(ctx context.Context, userID int64) error {
	return s.inTx(ctx, userID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id=?`, userID)
		return err
	})
}

func (s *sqliteStore) inTx(ctx context.Context, userID int64, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := mustExist(ctx, tx, userID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func mustExist(ctx context.Context, q queryer, userID int64) error {
	ok, err := cartExists(ctx, q, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cart %d: %w", userID, apperr.ErrUserNotFound)
	}
	return nil
}
