// Package checkouts provides database operations for borrow transactions.
//
// The synced flag partitions the collection into records the remote
// authority has acknowledged and records still pending reconciliation.
// Lookups filter on the boolean directly, backed by an index.
//
// # Usage
//
//	repo := checkouts.NewRepository(db)
//	pending, err := repo.GetUnsynced()
package checkouts

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

// Repository handles all checkout database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new checkouts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add persists a new checkout record.
func (r *Repository) Add(checkout *entities.Checkout) error {
	if checkout.ID == "" {
		return fmt.Errorf("%w: checkout id is required", database.ErrInvalidState)
	}
	if checkout.CheckoutDate.IsZero() {
		checkout.CheckoutDate = time.Now()
	}
	return database.Translate(r.db.Create(checkout).Error)
}

// Get retrieves a checkout by its identifier.
func (r *Repository) Get(id string) (*entities.Checkout, error) {
	var checkout entities.Checkout
	if err := r.db.First(&checkout, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &checkout, nil
}

// GetAll returns every checkout record.
func (r *Repository) GetAll() ([]entities.Checkout, error) {
	var checkouts []entities.Checkout
	err := r.db.Find(&checkouts).Error
	return checkouts, err
}

// GetUnsynced returns checkouts the remote authority has not acknowledged.
func (r *Repository) GetUnsynced() ([]entities.Checkout, error) {
	var checkouts []entities.Checkout
	err := r.db.Where("synced = ?", false).Find(&checkouts).Error
	return checkouts, err
}

// MarkSynced flips the synced flag for one record. Only the reconciliation
// engine calls this, and only after a remote acknowledgement.
func (r *Repository) MarkSynced(id string) error {
	result := r.db.Model(&entities.Checkout{}).
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

// ActiveForBook returns the single borrowed checkout for a book, or
// ErrNotFound when the book has no open checkout.
func (r *Repository) ActiveForBook(bookID string) (*entities.Checkout, error) {
	var checkout entities.Checkout
	err := r.db.Where("book_id = ? AND status = ?", bookID, entities.CheckoutStatusBorrowed).
		First(&checkout).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &checkout, nil
}

// ForStudent returns all checkouts for a borrower, via the student email
// index. Order is stable but unspecified; callers sort.
func (r *Repository) ForStudent(studentEmail string) ([]entities.Checkout, error) {
	var checkouts []entities.Checkout
	err := r.db.Where("student_email = ?", studentEmail).Find(&checkouts).Error
	return checkouts, err
}

// Update overwrites a checkout record by primary key.
func (r *Repository) Update(checkout *entities.Checkout) error {
	return database.Translate(r.db.Save(checkout).Error)
}

// Upsert inserts or overwrites a checkout by primary key. Idempotent under
// retry; used when applying remote-authority state and by the authority.
func (r *Repository) Upsert(checkout *entities.Checkout) error {
	return database.Translate(r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(checkout).Error)
}
