// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── devotionals/     # Cached daily studies synced from the remote API
//	├── notes/           # Local user notes
//	├── sync/            # Sync progress tracking
//	└── settings/        # Key/value settings (last sync status)
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./fellowship.db")
//
//	devotionalsRepo := devotionals.NewRepository(db.DB)
//	notesRepo := notes.NewRepository(db.DB)
//
//	studies, err := devotionalsRepo.ByProgram(ctx, "Sunday School", "2024-01")
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
