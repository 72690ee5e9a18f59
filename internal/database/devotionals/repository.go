// Package devotionals provides database operations for cached daily studies.
//
// Rows are keyed by the id the remote API assigns, so writes are
// insert-or-replace and the table never shrinks through this package.
//
// # Usage
//
//	repo := devotionals.NewRepository(db)
//	if err := repo.Initialize(ctx); err != nil { ... }
//	err := repo.Upsert(ctx, &entities.Devotional{ID: 7, Program: "Bible Study", Date: "2024-01-07"})
package devotionals

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/fellowship/internal/entities"
)

// Repository handles all devotional database operations.
type Repository struct {
	db *gorm.DB

	mu          sync.Mutex
	initialized bool
}

// NewRepository creates a new devotionals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Initialize creates the devotionals table if it does not exist.
// Only the first successful call touches the database.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&entities.Devotional{}); err != nil {
		return fmt.Errorf("failed to create devotionals table: %w", err)
	}
	r.initialized = true
	return nil
}

// Initialized reports whether Initialize has completed.
func (r *Repository) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// Upsert writes the row for d.ID, replacing every column of an existing row.
func (r *Repository) Upsert(ctx context.Context, d *entities.Devotional) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(d).Error
}

// ByProgram returns the program's devotionals, newest date first.
// A non-empty month ("YYYY-MM") restricts results to dates in that month.
func (r *Repository) ByProgram(ctx context.Context, program, month string) ([]entities.Devotional, error) {
	query := r.db.WithContext(ctx).Where("program = ?", program)
	if month != "" {
		query = query.Where("date LIKE ?", month+"-%")
	}

	var devotionals []entities.Devotional
	err := query.Order("date DESC").Order("id DESC").Find(&devotionals).Error
	return devotionals, err
}

// ByProgramAndDate returns the first devotional matching program and date.
// Returns gorm.ErrRecordNotFound when nothing matches.
func (r *Repository) ByProgramAndDate(ctx context.Context, program, date string) (*entities.Devotional, error) {
	var devotional entities.Devotional
	err := r.db.WithContext(ctx).
		Where("program = ? AND date = ?", program, date).
		Order("date DESC").Order("id DESC").
		First(&devotional).Error
	if err != nil {
		return nil, err
	}
	return &devotional, nil
}

// ByID returns a single devotional by its remote id.
func (r *Repository) ByID(ctx context.Context, id int64) (*entities.Devotional, error) {
	var devotional entities.Devotional
	if err := r.db.WithContext(ctx).First(&devotional, id).Error; err != nil {
		return nil, err
	}
	return &devotional, nil
}

// Programs returns the distinct program names present in the cache.
func (r *Repository) Programs(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entities.Devotional{}).
		Distinct("program").
		Order("program ASC").
		Pluck("program", &names).Error
	return names, err
}

// Count returns the number of cached devotionals.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Devotional{}).Count(&count).Error
	return count, err
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
