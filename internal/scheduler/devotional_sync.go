// Package scheduler runs the devotional sync on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/fellowship/internal/devotional"
)

const defaultSyncTimeout = 5 * time.Minute

// Syncer runs one devotional sync.
type Syncer interface {
	Sync(ctx context.Context) (devotional.SyncResult, error)
}

// RunGuard reports whether a sync is already running, possibly in another
// process sharing the database.
type RunGuard interface {
	IsSyncRunning(ctx context.Context) (bool, error)
}

// Config controls the devotional sync schedule.
type Config struct {
	Enabled      bool
	Schedule     string
	RunOnStartup bool
	Timeout      time.Duration
	Guard        RunGuard // optional
}

// DevotionalSyncScheduler manages periodic devotional syncs
type DevotionalSyncScheduler struct {
	syncer Syncer
	config Config

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	lastResult *devotional.SyncResult
	lastErr    error
	cancelFunc context.CancelFunc
	runCtx     context.Context
	background sync.WaitGroup // RunOnStartup and RunNow syncs
}

// NewDevotionalSyncScheduler creates a new scheduler instance
func NewDevotionalSyncScheduler(syncer Syncer, config Config) *DevotionalSyncScheduler {
	if config.Timeout <= 0 {
		config.Timeout = defaultSyncTimeout
	}
	return &DevotionalSyncScheduler{
		syncer: syncer,
		config: config,
		cron:   cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start begins the scheduler if sync is enabled
func (s *DevotionalSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Devotional sync scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	var runCtx context.Context
	runCtx, s.cancelFunc = context.WithCancel(ctx)
	s.runCtx = runCtx

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSync(runCtx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.config.Schedule)
	log.Printf("Devotional sync scheduler: started with schedule '%s' (%s). Next run: %v",
		s.config.Schedule,
		GetCronDescription(s.config.Schedule),
		nextRun)

	if s.config.RunOnStartup {
		s.goSync(runCtx)
	}

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler, cancelling running syncs and waiting for them,
// including those started by RunOnStartup and RunNow.
func (s *DevotionalSyncScheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.runCtx = nil
	entryID := s.entryID
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasRunning {
		<-s.cron.Stop().Done()
		s.cron.Remove(entryID)
	}
	s.background.Wait()

	if wasRunning {
		log.Printf("Devotional sync scheduler: stopped")
	}
}

// RunNow triggers an immediate sync in the background. While the scheduler
// runs, Stop cancels it.
func (s *DevotionalSyncScheduler) RunNow() {
	s.mu.RLock()
	ctx := s.runCtx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.goSync(ctx)
}

func (s *DevotionalSyncScheduler) goSync(ctx context.Context) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.runSync(ctx)
	}()
}

// IsRunning returns whether the scheduler is active
func (s *DevotionalSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *DevotionalSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// LastResult returns the outcome of the most recent scheduled sync, if any
func (s *DevotionalSyncScheduler) LastResult() (*devotional.SyncResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult, s.lastErr
}

// GetNextRunTime returns when the next sync will occur
func (s *DevotionalSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync performs one sync unless another is already running
func (s *DevotionalSyncScheduler) runSync(ctx context.Context) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Devotional sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	if s.config.Guard != nil {
		running, err := s.config.Guard.IsSyncRunning(ctx)
		if err != nil {
			log.Printf("Devotional sync: could not check for a running sync: %v", err)
		}
		if running {
			log.Printf("Devotional sync: skipped (sync running elsewhere)")
			s.mu.Lock()
			s.isSyncing = false
			s.mu.Unlock()
			return
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.syncer.Sync(ctx)
	if err != nil {
		log.Printf("Devotional sync: scheduled run failed: %v", err)
	}

	s.mu.Lock()
	s.isSyncing = false
	s.lastResult = &result
	s.lastErr = err
	s.mu.Unlock()
}
