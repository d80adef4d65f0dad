// Package users provides database operations for reference user data.
//
// Users are not mutated by the circulation core; they exist to resolve API
// tokens to a principal on the remote authority side.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByToken(token)
package users

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a user with a generated API token.
func (r *Repository) CreateUser(email, name string) (*entities.User, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Token:     token,
		CreatedAt: time.Now(),
	}

	if err := r.db.Create(user).Error; err != nil {
		return nil, database.Translate(err)
	}

	return user, nil
}

// GetUser retrieves a user by identifier.
func (r *Repository) GetUser(id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &user, nil
}

// GetUserByToken resolves an API token to a user.
func (r *Repository) GetUserByToken(token string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("token = ?", token).First(&user).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &user, nil
}

// Principal resolves an API token to a user identifier.
// Implements auth.TokenVerifier.
func (r *Repository) Principal(token string) (string, error) {
	user, err := r.GetUserByToken(token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetAllUsers returns every user record.
func (r *Repository) GetAllUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Find(&users).Error
	return users, err
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
