package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/entities"
)

func addCatalogBook(t *testing.T, booksRepo *books.Repository) {
	t.Helper()
	require.NoError(t, booksRepo.AddBook(&entities.Book{
		ID:       "book-1",
		Title:    "Dune",
		Author:   "Herbert",
		ISBN:     "1234567890",
		Quantity: 1,
	}))
}

func borrow(t *testing.T, router *gin.Engine, bookID, student string) entities.Checkout {
	t.Helper()
	payload := map[string]any{"bookId": bookID, "action": "borrow"}
	if student != "" {
		payload["studentEmail"] = student
	}
	w := doJSON(router, http.MethodPost, "/api/checkout", payload, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)

	var checkout entities.Checkout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkout))
	return checkout
}

func TestCheckout_Borrow(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	addCatalogBook(t, booksRepo)

	checkout := borrow(t, router, "book-1", "alice@example.com")
	assert.NotEmpty(t, checkout.ID)
	assert.Equal(t, "alice@example.com", checkout.StudentEmail)
	assert.Equal(t, entities.CheckoutStatusBorrowed, checkout.Status)
	assert.False(t, checkout.Synced)

	book, err := booksRepo.GetBook("book-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusBorrowed, book.Status)
}

func TestCheckout_BorrowDefaultsToPrincipal(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	addCatalogBook(t, booksRepo)

	// No student in the body; the authenticated principal borrows.
	checkout := borrow(t, router, "book-1", "")
	assert.Equal(t, "user-1", checkout.StudentEmail)
}

func TestCheckout_SecondBorrowConflicts(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	addCatalogBook(t, booksRepo)
	borrow(t, router, "book-1", "alice@example.com")

	w := doJSON(router, http.MethodPost, "/api/checkout", map[string]any{
		"bookId": "book-1", "action": "borrow", "studentEmail": "bob@example.com",
	}, "tok-123")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckout_Return(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	addCatalogBook(t, booksRepo)
	borrow(t, router, "book-1", "alice@example.com")

	w := doJSON(router, http.MethodPost, "/api/checkout", map[string]any{
		"bookId": "book-1", "action": "return",
	}, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)

	var checkout entities.Checkout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkout))
	assert.Equal(t, entities.CheckoutStatusReturned, checkout.Status)
	require.NotNil(t, checkout.ReturnDate)

	book, err := booksRepo.GetBook("book-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusAvailable, book.Status)
}

func TestCheckout_Validation(t *testing.T) {
	router, _, _, cleanup := setupRouter(t)
	defer cleanup()

	cases := []struct {
		name    string
		payload map[string]any
		status  int
	}{
		{"missing book", map[string]any{"action": "borrow"}, http.StatusBadRequest},
		{"bad action", map[string]any{"bookId": "book-1", "action": "steal"}, http.StatusBadRequest},
		{"unknown book", map[string]any{"bookId": "missing", "action": "borrow"}, http.StatusNotFound},
		{"return with no active checkout", map[string]any{"bookId": "missing", "action": "return"}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/checkout", tc.payload, "tok-123")
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestCheckout_RequiresToken(t *testing.T) {
	router, _, _, cleanup := setupRouter(t)
	defer cleanup()

	w := doJSON(router, http.MethodPost, "/api/checkout", map[string]any{
		"bookId": "book-1", "action": "borrow",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutHistory(t *testing.T) {
	router, booksRepo, _, cleanup := setupRouter(t)
	defer cleanup()

	addCatalogBook(t, booksRepo)
	borrow(t, router, "book-1", "alice@example.com")

	w := doJSON(router, http.MethodGet, "/api/checkouts", nil, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)

	var records []entities.BorrowingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Dune", records[0].Book.Title)

	// Narrowed by student.
	w = doJSON(router, http.MethodGet, "/api/checkouts?student=bob@example.com", nil, "tok-123")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Empty(t, records)
}
