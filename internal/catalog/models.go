package catalog

type Book struct {
	ID     int64
	Title  string
	Author string
	Price  float64
}

// NewBook trae los campos que envía el cliente; el id lo asigna el store.
type NewBook struct {
	Title  string
	Author string
	Price  float64
}

func (n NewBook) withID(id int64) Book {
	return Book{ID: id, Title: n.Title, Author: n.Author, Price: n.Price}
}

// StarterBooks es el catálogo con el que arranca un servicio nuevo.
var StarterBooks = []NewBook{
	{Title: "El Principito", Author: "Antoine de Saint-Exupéry", Price: 15.99},
	{Title: "Cien años de soledad", Author: "Gabriel García Márquez", Price: 22.50},
}
