package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/fellowship/internal/devotional"
	"github.com/mrlokans/fellowship/internal/entities"
)

// SyncDevotionalsQueue is the queue name for devotional sync tasks.
const SyncDevotionalsQueue = "sync_devotionals"

// DevotionalSyncer is implemented by devotional.Store.
type DevotionalSyncer interface {
	Sync(ctx context.Context) (devotional.SyncResult, error)
	SyncDate(ctx context.Context, date string) (entities.Devotional, error)
}

// SyncDevotionalsTask syncs the devotional cache. With Date set only that
// day is fetched; otherwise the whole collection is.
type SyncDevotionalsTask struct {
	Date string `json:"date,omitempty"`
}

// Config returns the queue configuration for devotional sync tasks.
func (t SyncDevotionalsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        SyncDevotionalsQueue,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncDevotionalsProcessor creates a processor function for SyncDevotionalsTask.
// A failed fetch fails the task so backlite retries it.
func SyncDevotionalsProcessor(syncer DevotionalSyncer, timeout time.Duration) backlite.QueueProcessor[SyncDevotionalsTask] {
	return func(ctx context.Context, task SyncDevotionalsTask) error {
		if syncer == nil {
			return fmt.Errorf("devotional store not configured")
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if task.Date != "" {
			d, err := syncer.SyncDate(ctx, task.Date)
			if err != nil {
				return fmt.Errorf("sync devotional %s: %w", task.Date, err)
			}
			log.Printf("[TASK] Devotional %d for %s (%s) cached", d.ID, d.Date, d.Program)
			return nil
		}

		result, err := syncer.Sync(ctx)
		if err != nil {
			return fmt.Errorf("sync devotionals: %w", err)
		}

		log.Printf("[TASK] Devotional sync %s complete: %d fetched, %d stored, %d failed",
			result.RunID, result.Fetched, result.Stored, result.Failed)
		return nil
	}
}

// NewSyncDevotionalsQueue creates a backlite queue for devotional sync tasks.
func NewSyncDevotionalsQueue(syncer DevotionalSyncer, timeout time.Duration) backlite.Queue {
	return backlite.NewQueue(SyncDevotionalsProcessor(syncer, timeout))
}
