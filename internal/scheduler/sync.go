// Package scheduler triggers periodic reconciliation while the client is
// online.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/circulate/internal/entities"
	"github.com/mrlokans/circulate/internal/tasks"
)

// SyncScheduler enqueues reconciliation tasks on a cron schedule.
type SyncScheduler struct {
	taskClient *tasks.Client
	schedule   string
	mode       entities.SyncMode

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSyncScheduler creates a scheduler that enqueues a sync task of the
// given mode according to schedule (standard 5-field cron format).
func NewSyncScheduler(taskClient *tasks.Client, schedule string, mode entities.SyncMode) *SyncScheduler {
	return &SyncScheduler{
		taskClient: taskClient,
		schedule:   schedule,
		mode:       mode,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueue(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Sync scheduler: started with schedule '%s' (mode %s)", s.schedule, s.mode)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Sync scheduler: stopped")
}

func (s *SyncScheduler) enqueue(ctx context.Context) {
	_, err := s.taskClient.Add(tasks.SyncRemoteTask{Mode: s.mode}).Ctx(ctx).Save()
	if err != nil {
		log.Printf("Sync scheduler: failed to enqueue sync task: %v", err)
		return
	}
	log.Printf("Sync scheduler: enqueued %s sync", s.mode)
}
