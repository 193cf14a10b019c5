package httpapi

import (
	"github.com/ahinestrog/librosapi/internal/cart"
	"github.com/ahinestrog/librosapi/internal/catalog"
)

// ---- mapping JSON <-> dominio ----

type bookDTO struct {
	ID     int64   `json:"id"`
	Titulo string  `json:"titulo"`
	Autor  string  `json:"autor"`
	Precio float64 `json:"precio"`
}

type createBookRequest struct {
	Titulo *string  `json:"titulo"`
	Autor  *string  `json:"autor"`
	Precio *float64 `json:"precio"`
}

type registerRequest struct {
	Nombre *string `json:"nombre"`
	Email  *string `json:"email"`
}

type addItemRequest struct {
	LibroID  *int64 `json:"libro_id"`
	Cantidad *int   `json:"cantidad"`
}

type cartItemDTO struct {
	Libro    bookDTO `json:"libro"`
	Cantidad int     `json:"cantidad"`
}

type cartDTO struct {
	Items []cartItemDTO `json:"items"`
	Total float64       `json:"total"`
}

type messageDTO struct {
	Mensaje string `json:"mensaje"`
}

type registeredDTO struct {
	Mensaje string `json:"mensaje"`
	ID      int64  `json:"id"`
}

type errorDTO struct {
	Detail string `json:"detail"`
}

func bookToDTO(b catalog.Book) bookDTO {
	return bookDTO{ID: b.ID, Titulo: b.Title, Autor: b.Author, Precio: b.Price}
}

func viewToDTO(v cart.View) cartDTO {
	out := cartDTO{Items: make([]cartItemDTO, 0, len(v.Items)), Total: v.Total}
	for _, it := range v.Items {
		out.Items = append(out.Items, cartItemDTO{Libro: bookToDTO(it.Book), Cantidad: it.Quantity})
	}
	return out
}
