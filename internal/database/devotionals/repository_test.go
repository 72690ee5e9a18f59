package devotionals

import (
	"context"
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
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "devotionals.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := NewRepository(db)
	require.NoError(t, repo.Initialize(context.Background()))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}
	return repo, cleanup
}

func TestRepository_Initialize_Idempotent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.True(t, repo.Initialized())
	require.NoError(t, repo.Initialize(context.Background()))
	require.NoError(t, repo.Initialize(context.Background()))
	assert.True(t, repo.db.Migrator().HasTable("devotionals"))
}

func TestRepository_Upsert_ReplacesByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	first := entities.Devotional{ID: 1, Program: "Sunday School", Date: "2024-01-07", Topic: "A", Content: "x", CreatedAt: "2023-12-30T10:00:00Z"}
	second := first
	second.Content = "y"
	second.Topic = "A2"

	require.NoError(t, repo.Upsert(ctx, &first))
	require.NoError(t, repo.Upsert(ctx, &first))
	require.NoError(t, repo.Upsert(ctx, &second))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := repo.ByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "y", stored.Content)
	assert.Equal(t, "A2", stored.Topic)
	assert.Equal(t, "2023-12-30T10:00:00Z", stored.CreatedAt)
}

func TestRepository_ByProgram(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	rows := []entities.Devotional{
		{ID: 1, Program: "Sunday School", Date: "2024-01-07"},
		{ID: 2, Program: "Sunday School", Date: "2024-01-14"},
		{ID: 3, Program: "Bible Study", Date: "2024-01-07"},
		{ID: 4, Program: "Sunday School", Date: "2024-02-04"},
	}
	for i := range rows {
		require.NoError(t, repo.Upsert(ctx, &rows[i]))
	}

	t.Run("all months newest first", func(t *testing.T) {
		got, err := repo.ByProgram(ctx, "Sunday School", "")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []int64{4, 2, 1}, ids(got))
	})

	t.Run("single month", func(t *testing.T) {
		got, err := repo.ByProgram(ctx, "Sunday School", "2024-01")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 1}, ids(got))
	})

	t.Run("unknown program", func(t *testing.T) {
		got, err := repo.ByProgram(ctx, "Youth", "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRepository_ByProgramAndDate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &entities.Devotional{ID: 3, Program: "Bible Study", Date: "2024-01-07", Topic: "C"}))
	require.NoError(t, repo.Upsert(ctx, &entities.Devotional{ID: 9, Program: "Bible Study", Date: "2024-01-07", Topic: "C-dup"}))

	got, err := repo.ByProgramAndDate(ctx, "Bible Study", "2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID, "highest id wins among duplicates")

	_, err = repo.ByProgramAndDate(ctx, "Bible Study", "2024-01-08")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_Programs(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &entities.Devotional{ID: 1, Program: "Sunday School", Date: "2024-01-07"}))
	require.NoError(t, repo.Upsert(ctx, &entities.Devotional{ID: 2, Program: "Sunday School", Date: "2024-01-14"}))
	require.NoError(t, repo.Upsert(ctx, &entities.Devotional{ID: 3, Program: "Bible Study", Date: "2024-01-07"}))

	names, err := repo.Programs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bible Study", "Sunday School"}, names)
}

func ids(devotionals []entities.Devotional) []int64 {
	out := make([]int64, len(devotionals))
	for i, d := range devotionals {
		out[i] = d.ID
	}
	return out
}
