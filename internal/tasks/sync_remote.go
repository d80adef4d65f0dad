package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/circulate/internal/entities"
	"github.com/mrlokans/circulate/internal/syncer"
)

// SyncRemoteTask reconciles the local store with the remote authority.
// Mode selects the protocol: full batch or per-record push.
type SyncRemoteTask struct {
	Mode entities.SyncMode `json:"mode"`
}

// Config returns the queue configuration for sync tasks. A failed sync is
// retried with backoff; upserts are idempotent so retries are safe.
func (t SyncRemoteTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_remote",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncRemoteProcessor creates a processor function for SyncRemoteTask.
func SyncRemoteProcessor(engine *syncer.Engine) backlite.QueueProcessor[SyncRemoteTask] {
	return func(ctx context.Context, task SyncRemoteTask) error {
		if engine == nil {
			return fmt.Errorf("sync engine not configured")
		}

		var (
			report *syncer.Report
			err    error
		)
		switch task.Mode {
		case entities.SyncModePush:
			report, err = engine.PushUnsynced(ctx)
		default:
			report, err = engine.SyncWithServer(ctx)
		}
		if err != nil {
			return fmt.Errorf("sync (%s): %w", task.Mode, err)
		}

		log.Printf("[TASK] sync complete: mode=%s pushed=%d succeeded=%d failed=%d",
			report.Mode, report.Pushed, report.Succeeded, report.Failed)
		return nil
	}
}

// NewSyncRemoteQueue creates a backlite queue for sync tasks.
func NewSyncRemoteQueue(engine *syncer.Engine) backlite.Queue {
	return backlite.NewQueue(SyncRemoteProcessor(engine))
}
