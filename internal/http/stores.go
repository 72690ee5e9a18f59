package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/fellowship/internal/churchapi"
	"github.com/mrlokans/fellowship/internal/devotional"
	"github.com/mrlokans/fellowship/internal/entities"
	"github.com/mrlokans/fellowship/internal/readaloud"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls.

// --- Devotionals ---

// DevotionalReader provides read access to the devotional cache.
type DevotionalReader interface {
	QueryByProgram(ctx context.Context, program, month string) []entities.Devotional
	QueryByProgramAndDate(ctx context.Context, program, date string) (entities.Devotional, bool)
	Dates(ctx context.Context, program, month string) []string
	Programs(ctx context.Context) []string
}

// DevotionalSyncer refreshes the devotional cache from the remote API.
type DevotionalSyncer interface {
	Sync(ctx context.Context) (devotional.SyncResult, error)
	SyncDate(ctx context.Context, date string) (entities.Devotional, error)
}

// DevotionalStore combines cache reads and sync.
type DevotionalStore interface {
	DevotionalReader
	DevotionalSyncer
}

// SyncProgressReader exposes the progress row of the last sync run.
type SyncProgressReader interface {
	Latest(ctx context.Context) (*entities.SyncProgress, error)
}

// ProgramLister lists programs published by the remote API.
type ProgramLister interface {
	ListPrograms(ctx context.Context) ([]churchapi.ProgramData, error)
}

// --- Notes ---

// NoteStore provides CRUD access to local notes.
type NoteStore interface {
	Create(ctx context.Context, draft entities.NoteDraft) (entities.Note, error)
	Update(ctx context.Context, id uint, draft entities.NoteDraft) (entities.Note, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (entities.Note, error)
	List(ctx context.Context) ([]entities.Note, error)
}

// --- Read-aloud ---

// ReadAloud is the transport surface of the read-aloud controller.
type ReadAloud interface {
	Start(verses []string) bool
	Pause() bool
	Resume() bool
	Restart() bool
	Next() bool
	Previous() bool
	Stop()
	State() readaloud.State
}

// --- Tasks ---

// TaskQueue enqueues background jobs and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// --- Health ---

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
