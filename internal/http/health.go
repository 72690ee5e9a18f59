package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db           Pinger
	syncProgress SyncProgressReader
	version      string
}

func NewHealthController(db Pinger, syncProgress SyncProgressReader, version string) *HealthController {
	return &HealthController{
		db:           db,
		syncProgress: syncProgress,
		version:      version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Last devotional sync is informational only
	if h.syncProgress != nil {
		progress, err := h.syncProgress.Latest(c.Request.Context())
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && progress == nil):
			checks["devotional_sync"] = "never run"
		case err != nil:
			checks["devotional_sync"] = "error: " + err.Error()
		default:
			checks["devotional_sync"] = string(progress.Status)
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
