package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/librosapi/internal/cart"
	"github.com/ahinestrog/librosapi/internal/catalog"
	"github.com/ahinestrog/librosapi/internal/httpapi"
	"github.com/ahinestrog/librosapi/internal/user"
)

// newTestServer arma el mismo stack que main: catálogo en memoria detrás del LRU.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repo, err := catalog.NewCachedRepository(catalog.NewMemoryRepo(), 128)
	require.NoError(t, err)
	books := catalog.NewService(repo, nil)
	_, err = books.Seed(context.Background(), catalog.StarterBooks)
	require.NoError(t, err)
	carts := cart.NewMemoryStore()
	users := user.NewService(user.NewMemoryRegistry(), carts, nil)
	return httpapi.NewServer(books, users, cart.NewService(carts, books, nil), []string{"*"}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type book struct {
	ID     int64   `json:"id"`
	Titulo string  `json:"titulo"`
	Autor  string  `json:"autor"`
	Precio float64 `json:"precio"`
}

type cartBody struct {
	Items []struct {
		Libro    book `json:"libro"`
		Cantidad int  `json:"cantidad"`
	} `json:"items"`
	Total float64 `json:"total"`
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}

func Test_ListBooks_StarterCatalog(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/libros/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []book{
		{ID: 1, Titulo: "El Principito", Autor: "Antoine de Saint-Exupéry", Precio: 15.99},
		{ID: 2, Titulo: "Cien años de soledad", Autor: "Gabriel García Márquez", Precio: 22.50},
	}, decode[[]book](t, rec))
}

func Test_ListBooks_EmptyCatalogIsEmptyArray(t *testing.T) {
	books := catalog.NewService(catalog.NewMemoryRepo(), nil)
	carts := cart.NewMemoryStore()
	h := httpapi.NewServer(books, user.NewService(user.NewMemoryRegistry(), carts, nil),
		cart.NewService(carts, books, nil), nil).Handler()

	rec := do(t, h, http.MethodGet, "/libros/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func Test_CreateAndDeleteBook(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/libros/", `{"titulo":"Rayuela","autor":"Julio Cortázar","precio":18.75}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, book{ID: 3, Titulo: "Rayuela", Autor: "Julio Cortázar", Precio: 18.75}, decode[book](t, rec))

	rec = do(t, h, http.MethodDelete, "/libros/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mensaje":"Libro eliminado"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/libros/3", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Libro no encontrado", detail(t, rec))
}

func Test_CreateBook_Validation(t *testing.T) {
	h := newTestServer(t)
	cases := map[string]string{
		"empty body":      ``,
		"malformed":       `{"titulo":`,
		"missing titulo":  `{"autor":"a","precio":1}`,
		"missing autor":   `{"titulo":"t","precio":1}`,
		"missing precio":  `{"titulo":"t","autor":"a"}`,
		"negative precio": `{"titulo":"t","autor":"a","precio":-1}`,
		"string precio":   `{"titulo":"t","autor":"a","precio":"caro"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/libros/", body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NotEmpty(t, detail(t, rec))
		})
	}
}

func Test_CreateBook_OversizedBody(t *testing.T) {
	h := newTestServer(t)
	body := `{"titulo":"` + strings.Repeat("x", 1<<20) + `","autor":"a","precio":1}`

	rec := do(t, h, http.MethodPost, "/libros/", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "request body exceeds 1.0 MiB", detail(t, rec))
}

func Test_RegisterUser_SequentialIDs(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"ana@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"mensaje":"Usuario registrado","id":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Luis","email":"luis@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"mensaje":"Usuario registrado","id":2}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Sin email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func Test_Cart_ScenarioA_AddAndView(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"a@x"}`).Code)

	rec := do(t, h, http.MethodGet, "/carrito/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":1,"cantidad":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mensaje":"Libro añadido al carrito"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/carrito/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[cartBody](t, rec)
	require.Len(t, body.Items, 1)
	assert.Equal(t, book{ID: 1, Titulo: "El Principito", Autor: "Antoine de Saint-Exupéry", Precio: 15.99}, body.Items[0].Libro)
	assert.Equal(t, 2, body.Items[0].Cantidad)
	assert.InDelta(t, 31.98, body.Total, 1e-9)
}

func Test_Cart_ScenarioB_DeletedBookIsSkipped(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"a@x"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":1,"cantidad":2}`).Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/libros/1", "").Code)

	rec := do(t, h, http.MethodGet, "/carrito/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())
}

func Test_Cart_ScenarioB_CachedBookIsSkippedAfterDelete(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"a@x"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":1,"cantidad":2}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":2,"cantidad":1}`).Code)
	warm := decode[cartBody](t, do(t, h, http.MethodGet, "/carrito/1", ""))
	require.Len(t, warm.Items, 2)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/libros/1", "").Code)

	body := decode[cartBody](t, do(t, h, http.MethodGet, "/carrito/1", ""))
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(2), body.Items[0].Libro.ID)
	assert.InDelta(t, 22.50, body.Total, 1e-9)

	rec := do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":1,"cantidad":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Libro no encontrado", detail(t, rec))
}

func Test_Cart_ScenarioC_UnknownUser(t *testing.T) {
	h := newTestServer(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/carrito/999", ""},
		{http.MethodPost, "/carrito/999/agregar", `{"libro_id":1}`},
		{http.MethodDelete, "/carrito/999/vaciar", ""},
	} {
		rec := do(t, h, tc.method, tc.path, tc.body)

		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Equal(t, "Usuario no encontrado", detail(t, rec), tc.path)
	}
}

func Test_Cart_ScenarioD_UnknownBook(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"a@x"}`).Code)

	rec := do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":999,"cantidad":1}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Libro no encontrado", detail(t, rec))
}

func Test_Cart_DefaultQuantityAndClear(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"a@x"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/carrito/1/agregar", `{"libro_id":2}`).Code)

	body := decode[cartBody](t, do(t, h, http.MethodGet, "/carrito/1", ""))
	require.Len(t, body.Items, 1)
	assert.Equal(t, 1, body.Items[0].Cantidad)
	assert.InDelta(t, 22.50, body.Total, 1e-9)

	for range 2 {
		rec := do(t, h, http.MethodDelete, "/carrito/1/vaciar", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"mensaje":"Carrito vaciado"}`, rec.Body.String())
	}
	assert.JSONEq(t, `{"items":[],"total":0}`, do(t, h, http.MethodGet, "/carrito/1", "").Body.String())
}

func Test_Cart_AddValidation(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/usuarios/", `{"nombre":"Ana","email":"a@x"}`).Code)

	for name, body := range map[string]string{
		"missing libro_id":    `{"cantidad":1}`,
		"fractional cantidad": `{"libro_id":1,"cantidad":1.5}`,
		"string cantidad":     `{"libro_id":1,"cantidad":"dos"}`,
	} {
		rec := do(t, h, http.MethodPost, "/carrito/1/agregar", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, name)
	}

	rec := do(t, h, http.MethodGet, "/carrito/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(t, h, http.MethodDelete, "/libros/uno", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func Test_Routing_UnknownRouteAndMethod(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/nada", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detail(t, rec))

	rec = do(t, h, http.MethodPut, "/libros/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", detail(t, rec))
}

func Test_Middleware_RequestIDAndHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func Test_CORS_Preflight(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/carrito/1/agregar", nil)
	req.Header.Set("Origin", "http://tienda.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

type brokenCarts struct{}

func (brokenCarts) View(context.Context, int64) (cart.View, error) {
	return cart.View{}, errors.New("database is locked")
}
func (brokenCarts) Add(context.Context, int64, int64, int) error { return nil }
func (brokenCarts) Clear(context.Context, int64) error           { return nil }

func Test_InfrastructureErrorsAre500(t *testing.T) {
	books := catalog.NewService(catalog.NewMemoryRepo(), nil)
	h := httpapi.NewServer(books, user.NewService(user.NewMemoryRegistry(), cart.NewMemoryStore(), nil),
		brokenCarts{}, nil).Handler()

	rec := do(t, h, http.MethodGet, "/carrito/1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", detail(t, rec))
}
