package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fellowship/internal/database"
	syncrepo "github.com/mrlokans/fellowship/internal/database/sync"
)

func setupHealthTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error {
	return errors.New("database is locked")
}

func getHealth(t *testing.T, controller *HealthController) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db, cleanup := setupHealthTestDB(t)
		defer cleanup()

		code, response := getHealth(t, NewHealthController(db, nil, "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.NotEmpty(t, response.Time)
	})

	t.Run("returns healthy when database is nil", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		code, response := getHealth(t, NewHealthController(nil, nil, ""))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns unhealthy when ping fails", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		code, response := getHealth(t, NewHealthController(failingPinger{}, nil, ""))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "database is locked")
	})

	t.Run("reports devotional sync state", func(t *testing.T) {
		db, cleanup := setupHealthTestDB(t)
		defer cleanup()
		progress := syncrepo.NewRepository(db.DB)

		_, response := getHealth(t, NewHealthController(db, progress, ""))
		assert.Equal(t, "never run", response.Checks["devotional_sync"])

		require.NoError(t, progress.StartSync(context.Background(), "run-1", 3))
		_, response = getHealth(t, NewHealthController(db, progress, ""))
		assert.Equal(t, "running", response.Checks["devotional_sync"])

		require.NoError(t, progress.CompleteSync(context.Background(), "run-1", true, ""))
		_, response = getHealth(t, NewHealthController(db, progress, ""))
		assert.Equal(t, "completed", response.Checks["devotional_sync"])
	})
}

func TestDevotionalsController_SyncStatus(t *testing.T) {
	db, cleanup := setupHealthTestDB(t)
	defer cleanup()
	progress := syncrepo.NewRepository(db.DB)
	router := NewRouter(RouterConfig{Devotionals: &fakeDevotionalStore{}, SyncProgress: progress})

	w := doRequest(router, "GET", "/api/devotionals/sync/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	ctx := context.Background()
	require.NoError(t, progress.StartSync(ctx, "run-7", 12))
	require.NoError(t, progress.UpdateProgress(ctx, "run-7", 5, 4, 1, "2024-03-05"))

	w = doRequest(router, "GET", "/api/devotionals/sync/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		RunID     string `json:"run_id"`
		Status    string `json:"status"`
		Processed int    `json:"processed"`
		Failed    int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-7", body.RunID)
	assert.Equal(t, "running", body.Status)
	assert.Equal(t, 5, body.Processed)
	assert.Equal(t, 1, body.Failed)
}
