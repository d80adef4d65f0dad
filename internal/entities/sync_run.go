package entities

import (
	"time"
)

type SyncMode string

const (
	SyncModeFull SyncMode = "full" // full batch: every book + unsynced checkouts
	SyncModePush SyncMode = "push" // per-record: unsynced checkouts only
)

type SyncRunStatus string

const (
	SyncRunStatusRunning   SyncRunStatus = "running"
	SyncRunStatusCompleted SyncRunStatus = "completed"
	SyncRunStatusFailed    SyncRunStatus = "failed"
)

// SyncRun records one reconciliation attempt against the remote authority.
type SyncRun struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Mode        SyncMode      `gorm:"size:20;index" json:"mode"`
	Status      SyncRunStatus `gorm:"size:20" json:"status"`
	Books       int           `json:"books"`
	Checkouts   int           `json:"checkouts"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Error       string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
