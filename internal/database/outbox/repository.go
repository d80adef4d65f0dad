// Package outbox provides database operations for the OfflineSync journal.
//
// Every borrow and return performed by the circulation service leaves a
// journal entry here, distinct from the checkout record it mutates. The
// reconciliation engine flips entries synced once the remote authority has
// acknowledged the batch they travelled with.
package outbox

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

// Repository handles all offline-sync journal operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new outbox repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record appends a journal entry for a pending offline action.
func (r *Repository) Record(userID, bookID string, action entities.OfflineAction) (*entities.OfflineSync, error) {
	if bookID == "" || action == "" {
		return nil, fmt.Errorf("%w: book id and action are required", database.ErrInvalidState)
	}

	entry := &entities.OfflineSync{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		Action:    action,
		Synced:    false,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, database.Translate(err)
	}
	return entry, nil
}

// GetAll returns every journal entry.
func (r *Repository) GetAll() ([]entities.OfflineSync, error) {
	var entries []entities.OfflineSync
	err := r.db.Order("created_at ASC").Find(&entries).Error
	return entries, err
}

// GetUnsynced returns entries not yet acknowledged by the remote authority.
func (r *Repository) GetUnsynced() ([]entities.OfflineSync, error) {
	var entries []entities.OfflineSync
	err := r.db.Where("synced = ?", false).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

// MarkSynced flips a journal entry's synced flag.
func (r *Repository) MarkSynced(id string) error {
	result := r.db.Model(&entities.OfflineSync{}).
		Where("id = ?", id).
		Update("synced", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
