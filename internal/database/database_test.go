package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fellowship/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fellowship.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))

	migrator := db.DB.Migrator()
	assert.True(t, migrator.HasTable(&entities.Note{}))
	assert.True(t, migrator.HasTable(&entities.Setting{}))
	assert.True(t, migrator.HasTable(&entities.SyncProgress{}))
	assert.False(t, migrator.HasTable(&entities.Devotional{}), "devotionals table is created lazily")
}

func TestNewDatabase_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fellowship.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Setting{Key: "k", Value: "v"}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var setting entities.Setting
	require.NoError(t, db.DB.Where("key = ?", "k").First(&setting).Error)
	assert.Equal(t, "v", setting.Value)
}
