package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fellowship/internal/devotional"
)

type fakeSyncer struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeSyncer) Sync(ctx context.Context) (devotional.SyncResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return devotional.SyncResult{}, ctx.Err()
		}
	}
	return devotional.SyncResult{RunID: "run", Fetched: 2, Stored: 2}, f.err
}

func (f *fakeSyncer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduler_DisabledDoesNotStart(t *testing.T) {
	s := NewDevotionalSyncScheduler(&fakeSyncer{}, Config{Enabled: false, Schedule: "0 * * * *"})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewDevotionalSyncScheduler(&fakeSyncer{}, Config{Enabled: true, Schedule: "every sunday"})

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewDevotionalSyncScheduler(&fakeSyncer{}, Config{Enabled: true, Schedule: "0 5 * * *"})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 5, next.Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestScheduler_StopsWhenContextCancelled(t *testing.T) {
	s := NewDevotionalSyncScheduler(&fakeSyncer{}, Config{Enabled: true, Schedule: "0 * * * *"})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestScheduler_RunOnStartup(t *testing.T) {
	syncer := &fakeSyncer{}
	s := NewDevotionalSyncScheduler(syncer, Config{Enabled: true, Schedule: "0 * * * *", RunOnStartup: true})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		result, err := s.LastResult()
		return result != nil && err == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, syncer.callCount())
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	syncer := &fakeSyncer{block: make(chan struct{}), started: make(chan struct{}, 2)}
	s := NewDevotionalSyncScheduler(syncer, Config{Timeout: time.Second})

	s.RunNow()
	<-syncer.started
	assert.True(t, s.IsSyncing())

	s.runSync(context.Background())
	assert.Equal(t, 1, syncer.callCount())

	close(syncer.block)
	assert.Eventually(t, func() bool { return !s.IsSyncing() }, time.Second, 10*time.Millisecond)
}

func TestScheduler_RecordsFailure(t *testing.T) {
	syncErr := errors.New("remote unavailable")
	s := NewDevotionalSyncScheduler(&fakeSyncer{err: syncErr}, Config{})

	s.runSync(context.Background())

	_, err := s.LastResult()
	assert.True(t, errors.Is(err, syncErr))
}

type fakeGuard struct {
	running bool
	err     error
}

func (g fakeGuard) IsSyncRunning(ctx context.Context) (bool, error) {
	return g.running, g.err
}

func TestScheduler_GuardSkipsRunElsewhere(t *testing.T) {
	syncer := &fakeSyncer{}
	s := NewDevotionalSyncScheduler(syncer, Config{Guard: fakeGuard{running: true}})

	s.runSync(context.Background())

	assert.Equal(t, 0, syncer.callCount())
	assert.False(t, s.IsSyncing())
	result, err := s.LastResult()
	assert.Nil(t, result)
	assert.NoError(t, err)
}

func TestScheduler_GuardErrorStillSyncs(t *testing.T) {
	syncer := &fakeSyncer{}
	s := NewDevotionalSyncScheduler(syncer, Config{Guard: fakeGuard{err: errors.New("database is locked")}})

	s.runSync(context.Background())

	assert.Equal(t, 1, syncer.callCount())
}

func TestScheduler_StopWaitsForStartupSync(t *testing.T) {
	syncer := &fakeSyncer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewDevotionalSyncScheduler(syncer, Config{Enabled: true, Schedule: "0 * * * *", RunOnStartup: true})

	require.NoError(t, s.Start(context.Background()))
	<-syncer.started

	s.Stop()

	assert.False(t, s.IsSyncing())
	_, err := s.LastResult()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_StopCancelsRunNow(t *testing.T) {
	syncer := &fakeSyncer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewDevotionalSyncScheduler(syncer, Config{Enabled: true, Schedule: "0 * * * *"})

	require.NoError(t, s.Start(context.Background()))
	s.RunNow()
	<-syncer.started

	s.Stop()

	assert.False(t, s.IsSyncing())
	assert.Equal(t, 1, syncer.callCount())
}
