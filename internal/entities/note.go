package entities

import (
	"strings"
	"time"
)

// NoteDraft is a note that has not been stored yet and therefore has no identity.
type NoteDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IsEmpty reports whether both title and content are blank.
func (d NoteDraft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == ""
}

// Note is a persisted note. ID is assigned by the store.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:text" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Note) TableName() string {
	return "notes"
}

// Draft returns the editable part of a persisted note.
func (n Note) Draft() NoteDraft {
	return NoteDraft{Title: n.Title, Content: n.Content}
}
