// Package sync records the progress of devotional sync runs.
//
// One row per sync type holds the latest run. Updates name the run they
// belong to, so a run that was superseded (for example a CLI sync started
// while the server's scheduled sync was still writing) cannot overwrite the
// counters of the newer one.
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	err := repo.StartSync(ctx, runID, 100)
package sync

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/fellowship/internal/entities"
)

// staleAfter is how long a running record may go without an update before
// it is treated as interrupted.
const staleAfter = 10 * time.Minute

// Repository handles all sync progress database operations.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
	now      func() time.Time
}

// NewRepository creates a sync repository for devotional syncs.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, syncType: entities.SyncTypeDevotionals, now: time.Now}
}

// Latest returns the most recent run. gorm.ErrRecordNotFound means no sync
// has ever started.
func (r *Repository) Latest(ctx context.Context) (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.WithContext(ctx).Where("sync_type = ?", r.syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync replaces the previous run with a new running one.
func (r *Repository) StartSync(ctx context.Context, runID string, totalItems int) error {
	now := r.now()
	progress := entities.SyncProgress{
		SyncType:   r.syncType,
		Status:     entities.SyncStatusRunning,
		RunID:      runID,
		TotalItems: totalItems,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sync_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":       progress.Status,
			"run_id":       runID,
			"total_items":  totalItems,
			"processed":    0,
			"succeeded":    0,
			"failed":       0,
			"current_item": "",
			"error":        "",
			"started_at":   now,
			"updated_at":   now,
			"completed_at": nil,
		}),
	}).Create(&progress).Error
}

// UpdateProgress stores the counters of runID. Updates for a run that is
// no longer the latest are ignored.
func (r *Repository) UpdateProgress(ctx context.Context, runID string, processed, succeeded, failed int, currentItem string) error {
	return r.forRun(ctx, runID).Updates(map[string]any{
		"processed":    processed,
		"succeeded":    succeeded,
		"failed":       failed,
		"current_item": currentItem,
		"updated_at":   r.now(),
	}).Error
}

// CompleteSync marks runID completed or failed.
func (r *Repository) CompleteSync(ctx context.Context, runID string, succeeded bool, errorMsg string) error {
	now := r.now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}
	return r.forRun(ctx, runID).Updates(map[string]any{
		"status":       status,
		"current_item": "",
		"error":        errorMsg,
		"updated_at":   now,
		"completed_at": now,
	}).Error
}

// IsSyncRunning reports whether a run is in progress in this or another
// process. A running record not updated within staleAfter is marked failed.
func (r *Repository) IsSyncRunning(ctx context.Context) (bool, error) {
	progress, err := r.Latest(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !progress.IsRunning() {
		return false, nil
	}

	if progress.UpdatedAt.Before(r.now().Add(-staleAfter)) {
		return false, r.CompleteSync(ctx, progress.RunID, false, "sync was interrupted")
	}
	return true, nil
}

func (r *Repository) forRun(ctx context.Context, runID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entities.SyncProgress{}).
		Where("sync_type = ? AND run_id = ?", r.syncType, runID)
}
