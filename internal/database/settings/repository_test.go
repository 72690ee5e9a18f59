package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/fellowship/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSetting("theme", "dark")
	require.NoError(t, err)

	setting, err := repo.GetSetting("theme")
	require.NoError(t, err)
	assert.Equal(t, "theme", setting.Key)
	assert.Equal(t, "dark", setting.Value)
}

func TestRepository_SetSetting_Overwrite(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("theme", "dark"))
	require.NoError(t, repo.SetSetting("theme", "light"))

	var count int64
	repo.db.Model(&entities.Setting{}).Where("key = ?", "theme").Count(&count)
	assert.Equal(t, int64(1), count)

	value, err := repo.GetValue("theme", "")
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}

func TestRepository_SetSettings(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSettings(map[string]string{
		entities.SettingKeyDevotionalSyncLastStatus:  "success",
		entities.SettingKeyDevotionalSyncLastMessage: "stored 3 of 3",
	})
	require.NoError(t, err)

	status, err := repo.GetValue(entities.SettingKeyDevotionalSyncLastStatus, "")
	require.NoError(t, err)
	assert.Equal(t, "success", status)
}

func TestRepository_GetValue_Fallback(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	value, err := repo.GetValue("missing", "never")
	require.NoError(t, err)
	assert.Equal(t, "never", value)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("theme", "dark"))
	require.NoError(t, repo.DeleteSetting("theme"))

	_, err := repo.GetSetting("theme")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
