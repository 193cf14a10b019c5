package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/ahinestrog/librosapi/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	msgUserNotFound = "Usuario no encontrado"
	msgBookNotFound = "Libro no encontrado"
	maxBodyBytes    = 1 << 20
)

// validationError es un fallo de forma del request; se responde 422.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduce errores de dominio y validación al cuerpo {detail}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorDTO{Detail: msgUserNotFound})
	case errors.Is(err, apperr.ErrBookNotFound):
		writeJSON(w, http.StatusNotFound, errorDTO{Detail: msgBookNotFound})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorDTO{Detail: "Not Found"})
	case errors.As(err, new(validationError)):
		writeJSON(w, http.StatusUnprocessableEntity, errorDTO{Detail: err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorDTO{Detail: "Internal Server Error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return invalid("cannot read body: %v", err)
	}
	if len(body) > maxBodyBytes {
		return invalid("request body exceeds %s", humanize.IBytes(maxBodyBytes))
	}
	if len(body) == 0 {
		return invalid("body required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return invalid("malformed JSON: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid("%s must be an integer", name)
	}
	return id, nil
}
