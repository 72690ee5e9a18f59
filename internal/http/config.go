package http

import (
	"github.com/mrlokans/fellowship/internal/content"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database    Pinger
	Devotionals DevotionalStore
	Programs    ProgramLister
	Notes       NoteStore

	// Sync status; optional
	SyncProgress SyncProgressReader

	// Static content
	Bible  *content.Bible
	Hymnal *content.Hymnal

	// Read-aloud; optional
	ReadAloud ReadAloud

	// Background task queue; optional
	TaskQueue TaskQueue

	// Application settings
	Version        string
	MetricsEnabled bool
}
