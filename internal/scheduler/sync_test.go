package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulate/internal/entities"
	"github.com/mrlokans/circulate/internal/tasks"
)

func setupScheduler(t *testing.T, schedule string) (*SyncScheduler, func()) {
	dbPath := "./test_scheduler_" + t.Name() + ".db"

	client, err := tasks.NewClient(dbPath, tasks.DefaultConfig())
	require.NoError(t, err)

	scheduler := NewSyncScheduler(client, schedule, entities.SyncModePush)

	cleanup := func() {
		client.Close()
		os.Remove("./test_scheduler_" + t.Name() + "-tasks.db")
	}

	return scheduler, cleanup
}

func running(s *SyncScheduler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func TestSyncScheduler_StartStop(t *testing.T) {
	scheduler, cleanup := setupScheduler(t, "*/5 * * * *")
	defer cleanup()

	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, running(scheduler))

	// Starting twice is a no-op.
	require.NoError(t, scheduler.Start(context.Background()))

	scheduler.Stop()
	assert.False(t, running(scheduler))
	assert.Nil(t, scheduler.cancelFunc)

	// Stopping twice is a no-op.
	scheduler.Stop()
}

func TestSyncScheduler_StopsWhenParentContextCancels(t *testing.T) {
	scheduler, cleanup := setupScheduler(t, "*/5 * * * *")
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool {
		return !running(scheduler)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncScheduler_InvalidSchedule(t *testing.T) {
	scheduler, cleanup := setupScheduler(t, "not a schedule")
	defer cleanup()

	err := scheduler.Start(context.Background())
	require.Error(t, err)
	assert.False(t, running(scheduler))
}
