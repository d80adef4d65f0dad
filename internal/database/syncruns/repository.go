// Package syncruns provides database operations for reconciliation run
// tracking.
//
// Each call into the reconciliation engine opens a run row, accumulates
// counters, and closes it as completed or failed. The rows double as an
// audit trail of when the client last converged with the server.
//
// # Usage
//
//	repo := syncruns.NewRepository(db)
//	run, err := repo.Start(entities.SyncModeFull, bookCount, checkoutCount)
package syncruns

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/entities"
)

// Repository handles all sync run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Start records the beginning of a reconciliation attempt.
func (r *Repository) Start(mode entities.SyncMode, books, checkouts int) (*entities.SyncRun, error) {
	now := time.Now()
	run := &entities.SyncRun{
		Mode:      mode,
		Status:    entities.SyncRunStatusRunning,
		Books:     books,
		Checkouts: checkouts,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Complete closes a run as completed or failed with final counters.
func (r *Repository) Complete(runID uint, succeeded, failed int, runErr error) error {
	now := time.Now()
	status := entities.SyncRunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = entities.SyncRunStatusFailed
		errMsg = runErr.Error()
	}

	result := r.db.Model(&entities.SyncRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":       status,
			"succeeded":    succeeded,
			"failed":       failed,
			"error":        errMsg,
			"updated_at":   now,
			"completed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Latest returns the most recent run for a mode, or ErrNotFound.
func (r *Repository) Latest(mode entities.SyncMode) (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := r.db.Where("mode = ?", mode).Order("started_at DESC").First(&run).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &run, nil
}
