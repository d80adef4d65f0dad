package books

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func TestRepository_AddBook_Defaults(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{
		ID:       "book-1",
		Title:    "Dune",
		Author:   "Herbert",
		ISBN:     "1234567890",
		Quantity: 2,
	}
	require.NoError(t, repo.AddBook(book))

	stored, err := repo.GetBook("book-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableQuantity)
	assert.Equal(t, entities.BookStatusAvailable, stored.Status)
	assert.False(t, stored.CreatedAt.IsZero())

	available, err := repo.ListAvailable()
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Dune", available[0].Title)
}

func TestRepository_AddBook_DuplicateISBN(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	original := &entities.Book{ID: "book-1", Title: "Dune", Author: "Herbert", ISBN: "1234567890", Quantity: 1}
	require.NoError(t, repo.AddBook(original))

	duplicate := &entities.Book{ID: "book-2", Title: "Dune (reissue)", Author: "Herbert", ISBN: "1234567890", Quantity: 1}
	err := repo.AddBook(duplicate)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)

	// Original record is unchanged and the duplicate was never written.
	stored, err := repo.GetBook("book-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", stored.Title)

	_, err = repo.GetBook("book-2")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_AddBook_LookupFailure(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.Exec("DROP TABLE books").Error)

	err := repo.AddBook(&entities.Book{ID: "book-1", Title: "Dune", Author: "Herbert", ISBN: "1234567890", Quantity: 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, database.ErrConstraintViolation)
}

func TestRepository_SetStatus(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.AddBook(&entities.Book{ID: "book-1", Title: "Dune", Author: "Herbert", ISBN: "1234567890", Quantity: 1}))

	require.NoError(t, repo.SetStatus("book-1", entities.BookStatusBorrowed))
	stored, err := repo.GetBook("book-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusBorrowed, stored.Status)

	available, err := repo.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestRepository_SetStatus_UnknownBook(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetStatus("missing", entities.BookStatusBorrowed)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Upsert_Idempotent(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{
		ID:                "book-1",
		Title:             "Dune",
		Author:            "Herbert",
		ISBN:              "1234567890",
		Quantity:          2,
		AvailableQuantity: 2,
		Status:            entities.BookStatusAvailable,
	}
	require.NoError(t, repo.Upsert(book))
	require.NoError(t, repo.Upsert(book))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// An upsert with the same ID overwrites mutable fields.
	book.Status = entities.BookStatusBorrowed
	require.NoError(t, repo.Upsert(book))
	stored, err := repo.GetBook("book-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusBorrowed, stored.Status)
}
