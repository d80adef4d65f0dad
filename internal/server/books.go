package server

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/entities"
)

// ISBNs are accepted as 10 or 13 plain digits.
var isbnPattern = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)

// BooksController handles catalog routes on the authority.
type BooksController struct {
	books *books.Repository
}

func NewBooksController(booksRepo *books.Repository) *BooksController {
	return &BooksController{books: booksRepo}
}

// List returns the full catalog.
func (b *BooksController) List(c *gin.Context) {
	list, err := b.books.GetAllBooks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}
	c.JSON(http.StatusOK, list)
}

type createBookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

// Create registers a new book. New books always start fully available.
func (b *BooksController) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title == "" || req.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and author are required"})
		return
	}
	if !isbnPattern.MatchString(req.ISBN) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isbn must be 10 or 13 digits"})
		return
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		return
	}

	book := &entities.Book{
		ID:                uuid.NewString(),
		Title:             req.Title,
		Author:            req.Author,
		ISBN:              req.ISBN,
		Quantity:          req.Quantity,
		AvailableQuantity: req.Quantity,
		Status:            entities.BookStatusAvailable,
	}
	if err := b.books.AddBook(book); err != nil {
		if errors.Is(err, database.ErrConstraintViolation) {
			c.JSON(http.StatusConflict, gin.H{"error": "a book with this ISBN already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add book"})
		return
	}

	c.JSON(http.StatusOK, book)
}
