// Package apperr reúne los tipos de error que comparten stores y servicios.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound es el único fallo de dominio: el usuario o libro referenciado no existe.
var ErrNotFound = errors.New("not found")

var (
	// ErrUserNotFound: no hay carrito para ese id de usuario.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrBookNotFound: el id de libro no está en el catálogo.
	ErrBookNotFound = fmt.Errorf("book %w", ErrNotFound)
)
