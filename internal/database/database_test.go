package database

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/circulate/internal/entities"
)

func setupTestDB(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + t.Name() + ".db"

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestNewDatabase_IdempotentInit(t *testing.T) {
	dbPath := "./test_database_reopen.db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Book{ID: "book-1", Title: "Dune", ISBN: "1234567890"}).Error)
	require.NoError(t, db.Close())

	// Reopening an existing store re-runs migrations as a no-op and keeps
	// the data.
	db, err = NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewDatabase_Unavailable(t *testing.T) {
	_, err := NewDatabase("/nonexistent-dir/sub/store.db")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestReset_ClearsAllCollections(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.DB.Create(&entities.Book{ID: "book-1", Title: "Dune", ISBN: "1234567890"}).Error)
	require.NoError(t, db.DB.Create(&entities.Checkout{ID: "c-1", BookID: "book-1", StudentEmail: "alice@example.com", CheckoutDate: time.Now(), Status: entities.CheckoutStatusBorrowed}).Error)
	require.NoError(t, db.DB.Create(&entities.User{ID: "u-1", Email: "alice@example.com", Token: "tok", CreatedAt: time.Now()}).Error)
	require.NoError(t, db.DB.Create(&entities.OfflineSync{ID: "o-1", BookID: "book-1", Action: entities.OfflineActionBorrow, CreatedAt: time.Now()}).Error)

	require.NoError(t, db.Reset())

	for _, model := range []any{&entities.Book{}, &entities.Checkout{}, &entities.User{}, &entities.OfflineSync{}, &entities.SyncRun{}} {
		var count int64
		require.NoError(t, db.DB.Model(model).Count(&count).Error)
		assert.Zero(t, count, "expected %T to be empty after reset", model)
	}
}

func TestReset_FailureRollsBack(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.DB.Create(&entities.Book{ID: "book-1", Title: "Dune", ISBN: "1234567890"}).Error)
	require.NoError(t, db.DB.Create(&entities.Checkout{ID: "c-1", BookID: "book-1", StudentEmail: "alice@example.com", CheckoutDate: time.Now(), Status: entities.CheckoutStatusBorrowed}).Error)

	// Break the last collection in the clear order; the failed clear must
	// leave the earlier ones untouched.
	require.NoError(t, db.DB.Exec("DROP TABLE sync_runs").Error)

	err := db.Reset()
	require.Error(t, err)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.DB.Model(&entities.Checkout{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))
	assert.ErrorIs(t, Translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, Translate(gorm.ErrDuplicatedKey), ErrConstraintViolation)
	assert.ErrorIs(t, Translate(ErrNotFound), ErrNotFound)
}
