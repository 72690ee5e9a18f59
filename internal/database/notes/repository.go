// Package notes provides database operations for local user notes.
//
// Notes never leave the device. A NoteDraft becomes a Note once Create
// assigns it an id.
package notes

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/fellowship/internal/entities"
)

// ErrEmptyNote is returned when both title and content are blank.
var ErrEmptyNote = errors.New("note needs a title or content")

// ErrNotFound is returned when no note has the requested id.
var ErrNotFound = errors.New("note not found")

// Repository handles all notes database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new notes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create stores a draft and returns the persisted note.
func (r *Repository) Create(ctx context.Context, draft entities.NoteDraft) (entities.Note, error) {
	if draft.IsEmpty() {
		return entities.Note{}, ErrEmptyNote
	}
	note := entities.Note{
		Title:     draft.Title,
		Content:   draft.Content,
		CreatedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&note).Error; err != nil {
		return entities.Note{}, err
	}
	return note, nil
}

// Update replaces the title and content of an existing note. CreatedAt is kept.
func (r *Repository) Update(ctx context.Context, id uint, draft entities.NoteDraft) (entities.Note, error) {
	if draft.IsEmpty() {
		return entities.Note{}, ErrEmptyNote
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Note{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": draft.Title, "content": draft.Content})
	if result.Error != nil {
		return entities.Note{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Note{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a note.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Note{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a note by id.
func (r *Repository) Get(ctx context.Context, id uint) (entities.Note, error) {
	var note entities.Note
	err := r.db.WithContext(ctx).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Note{}, ErrNotFound
	}
	return note, err
}

// List returns all notes, newest first.
func (r *Repository) List(ctx context.Context) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&notes).Error
	return notes, err
}
