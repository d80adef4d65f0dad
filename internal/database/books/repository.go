// Package books provides database operations for the catalog collection.
//
// This package implements the catalog side of circulation: availability
// listings, status flips, and the idempotent upsert used by the sync layer.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	available, err := repo.ListAvailable()
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddBook persists a new catalog record. The creation timestamp is assigned
// if absent, the available quantity defaults to the total quantity, and the
// status defaults to available. A second book with the same ISBN under a
// different ID fails with ErrConstraintViolation and leaves the original
// record untouched.
func (r *Repository) AddBook(book *entities.Book) error {
	if book.ID == "" || book.ISBN == "" {
		return fmt.Errorf("%w: book id and isbn are required", database.ErrInvalidState)
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	if book.AvailableQuantity == 0 {
		book.AvailableQuantity = book.Quantity
	}
	if book.Status == "" {
		book.Status = entities.BookStatusAvailable
	}

	var existing entities.Book
	err := r.db.Where("isbn = ?", book.ISBN).First(&existing).Error
	if err == nil && existing.ID != book.ID {
		return fmt.Errorf("%w: isbn %s already registered as %s", database.ErrConstraintViolation, book.ISBN, existing.ID)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Translate(err)
	}

	return database.Translate(r.db.Create(book).Error)
}

// GetBook retrieves a book by its identifier.
func (r *Repository) GetBook(id string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &book, nil
}

// GetBookByISBN retrieves a book through the unique ISBN index.
func (r *Repository) GetBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &book, nil
}

// GetAllBooks returns the full catalog. The sync layer sends this set on
// every full reconciliation.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at ASC, id ASC").Find(&books).Error
	return books, err
}

// ListAvailable returns books with status available, for populating new
// checkout choices.
func (r *Repository) ListAvailable() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("status = ?", entities.BookStatusAvailable).
		Order("title ASC").Find(&books).Error
	return books, err
}

// SetStatus reads the book, mutates its status, and writes it back. It does
// not adjust AvailableQuantity; the circulation service keeps the two
// consistent. An unknown identifier fails with ErrNotFound and performs no
// write.
func (r *Repository) SetStatus(bookID string, status entities.BookStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, "id = ?", bookID).Error; err != nil {
			return database.Translate(err)
		}
		book.Status = status
		return tx.Save(&book).Error
	})
}

// Upsert inserts or overwrites a book by primary key. Idempotent: applying
// the same record twice leaves the same end state. Used when applying
// remote-authority state and by the authority itself.
func (r *Repository) Upsert(book *entities.Book) error {
	return database.Translate(r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(book).Error)
}

// Count returns the number of catalog records.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
