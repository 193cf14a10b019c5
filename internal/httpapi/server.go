// Package httpapi es la API HTTP JSON de la librería.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ahinestrog/librosapi/internal/cart"
	"github.com/ahinestrog/librosapi/internal/catalog"
	"github.com/ahinestrog/librosapi/internal/user"
)

type Catalog interface {
	List(ctx context.Context) ([]catalog.Book, error)
	Create(ctx context.Context, nb catalog.NewBook) (catalog.Book, error)
	Delete(ctx context.Context, id int64) error
}

type Users interface {
	Register(ctx context.Context, name, email string) (user.User, error)
}

type Carts interface {
	View(ctx context.Context, userID int64) (cart.View, error)
	Add(ctx context.Context, userID, bookID int64, quantity int) error
	Clear(ctx context.Context, userID int64) error
}

type Server struct {
	catalog Catalog
	users   Users
	carts   Carts
	origins []string
}

func NewServer(books Catalog, users Users, carts Carts, corsOrigins []string) *Server {
	return &Server{catalog: books, users: users, carts: carts, origins: corsOrigins}
}

// Handler devuelve el router envuelto en los middlewares de CORS, request-id y log.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorDTO{Detail: "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorDTO{Detail: "Method Not Allowed"})
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/libros/", s.handleListBooks).Methods(http.MethodGet)
	r.HandleFunc("/libros/", s.handleCreateBook).Methods(http.MethodPost)
	r.HandleFunc("/libros/{libro_id}", s.handleDeleteBook).Methods(http.MethodDelete)

	r.HandleFunc("/usuarios/", s.handleRegisterUser).Methods(http.MethodPost)

	r.HandleFunc("/carrito/{usuario_id}", s.handleViewCart).Methods(http.MethodGet)
	r.HandleFunc("/carrito/{usuario_id}/agregar", s.handleAddToCart).Methods(http.MethodPost)
	r.HandleFunc("/carrito/{usuario_id}/vaciar", s.handleClearCart).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
	})
	return withRequestID(withLog(c.Handler(r)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]bookDTO, 0, len(books))
	for _, b := range books {
		out = append(out, bookToDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	switch {
	case req.Titulo == nil:
		writeError(w, r, invalid("titulo is required"))
		return
	case req.Autor == nil:
		writeError(w, r, invalid("autor is required"))
		return
	case req.Precio == nil:
		writeError(w, r, invalid("precio is required"))
		return
	case *req.Precio < 0:
		writeError(w, r, invalid("precio must be non-negative"))
		return
	}

	b, err := s.catalog.Create(r.Context(), catalog.NewBook{Title: *req.Titulo, Author: *req.Autor, Price: *req.Precio})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookToDTO(b))
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "libro_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageDTO{Mensaje: "Libro eliminado"})
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Nombre == nil {
		writeError(w, r, invalid("nombre is required"))
		return
	}
	if req.Email == nil {
		writeError(w, r, invalid("email is required"))
		return
	}

	u, err := s.users.Register(r.Context(), *req.Nombre, *req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registeredDTO{Mensaje: "Usuario registrado", ID: u.ID})
}

func (s *Server) handleViewCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "usuario_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.carts.View(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToDTO(view))
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "usuario_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.LibroID == nil {
		writeError(w, r, invalid("libro_id is required"))
		return
	}
	quantity := 1
	if req.Cantidad != nil {
		quantity = *req.Cantidad
	}

	if err := s.carts.Add(r.Context(), userID, *req.LibroID, quantity); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageDTO{Mensaje: "Libro añadido al carrito"})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "usuario_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.carts.Clear(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageDTO{Mensaje: "Carrito vaciado"})
}
