package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulate/internal/entities"
)

func TestBooks_Create(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	w := doJSON(router, http.MethodPost, "/api/books", map[string]any{
		"title":    "Dune",
		"author":   "Frank Herbert",
		"isbn":     "9780441013593",
		"quantity": 3,
	}, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)

	var created entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 3, created.AvailableQuantity)
	assert.Equal(t, entities.BookStatusAvailable, created.Status)

	stored, err := booksRepo.GetBookByISBN("9780441013593")
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestBooks_Create_Validation(t *testing.T) {
	router, _, _, cleanup := setupRouter(t)
	defer cleanup()

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing title", map[string]any{"author": "Herbert", "isbn": "9780441013593", "quantity": 1}},
		{"missing author", map[string]any{"title": "Dune", "isbn": "9780441013593", "quantity": 1}},
		{"bad isbn", map[string]any{"title": "Dune", "author": "Herbert", "isbn": "12-34", "quantity": 1}},
		{"isbn wrong length", map[string]any{"title": "Dune", "author": "Herbert", "isbn": "12345", "quantity": 1}},
		{"zero quantity", map[string]any{"title": "Dune", "author": "Herbert", "isbn": "9780441013593", "quantity": 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/books", tc.payload, "tok-123")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestBooks_Create_DuplicateISBN(t *testing.T) {
	router, _, _, cleanup := setupRouter(t)
	defer cleanup()

	payload := map[string]any{
		"title":    "Dune",
		"author":   "Frank Herbert",
		"isbn":     "9780441013593",
		"quantity": 1,
	}

	w := doJSON(router, http.MethodPost, "/api/books", payload, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/books", payload, "tok-123")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ISBN already exists")
}

func TestBooks_List(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	require.NoError(t, booksRepo.AddBook(&entities.Book{ID: "book-1", Title: "Dune", Author: "Herbert", ISBN: "1234567890", Quantity: 1}))
	require.NoError(t, booksRepo.AddBook(&entities.Book{ID: "book-2", Title: "Neuromancer", Author: "Gibson", ISBN: "0987654321", Quantity: 1}))

	w := doJSON(router, http.MethodGet, "/api/books", nil, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)

	var list []entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}
