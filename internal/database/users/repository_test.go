package users

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
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func TestRepository_CreateUser(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("alice@example.com", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Len(t, user.Token, 64)

	other, err := repo.CreateUser("bob@example.com", "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, user.Token, other.Token)
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateUser("alice@example.com", "Alice")
	require.NoError(t, err)

	_, err = repo.CreateUser("alice@example.com", "Alice Again")
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
}

func TestRepository_Principal(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("alice@example.com", "Alice")
	require.NoError(t, err)

	principal, err := repo.Principal(user.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal)

	_, err = repo.Principal("no-such-token")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
