package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/mrlokans/fellowship/internal/devotional"
	"github.com/mrlokans/fellowship/internal/entities"
	"github.com/mrlokans/fellowship/internal/tasks"
)

const defaultSyncTimeout = 5 * time.Minute

// DevotionalsController serves the devotional cache and triggers syncs.
type DevotionalsController struct {
	store       DevotionalStore
	progress    SyncProgressReader
	taskQueue   TaskQueue
	syncTimeout time.Duration

	// Concurrent sync requests share one run.
	syncs singleflight.Group
}

// NewDevotionalsController creates a new DevotionalsController.
// progress and taskQueue may be nil.
func NewDevotionalsController(store DevotionalStore, progress SyncProgressReader, taskQueue TaskQueue) *DevotionalsController {
	return &DevotionalsController{
		store:       store,
		progress:    progress,
		taskQueue:   taskQueue,
		syncTimeout: defaultSyncTimeout,
	}
}

// SyncResponse reports a finished sync.
type SyncResponse struct {
	Result devotional.SyncResult `json:"result"`
	Shared bool                  `json:"shared"`
}

// List handles GET /api/devotionals?program=&month=
func (dc *DevotionalsController) List(c *gin.Context) {
	program := c.Query("program")
	if program == "" {
		respondBadRequest(c, "program is required")
		return
	}
	month := c.Query("month")

	records := dc.store.QueryByProgram(c.Request.Context(), program, month)
	decoded := make([]entities.Devotional, len(records))
	for i, d := range records {
		decoded[i] = devotional.Decode(d)
	}
	respondList(c, decoded)
}

// Dates handles GET /api/devotionals/dates?program=&month=
func (dc *DevotionalsController) Dates(c *gin.Context) {
	program := c.Query("program")
	if program == "" {
		respondBadRequest(c, "program is required")
		return
	}
	month := c.Query("month")

	respondList(c, dc.store.Dates(c.Request.Context(), program, month))
}

// Get handles GET /api/devotionals/:program/:date
func (dc *DevotionalsController) Get(c *gin.Context) {
	d, ok := dc.store.QueryByProgramAndDate(c.Request.Context(), c.Param("program"), c.Param("date"))
	if !ok {
		respondNotFound(c, "devotional")
		return
	}
	c.JSON(http.StatusOK, devotional.Decode(d))
}

// Sync handles POST /api/devotionals/sync
// Runs a full sync, or a single-day sync when ?date= is given.
// Overlapping requests wait for the sync already in flight.
func (dc *DevotionalsController) Sync(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		dc.syncDate(c, date)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	v, err, shared := dc.syncs.Do("all", func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, dc.syncTimeout)
		defer cancel()
		return dc.store.Sync(ctx)
	})
	if err != nil {
		respondUpstreamError(c, err, "devotional sync")
		return
	}

	c.JSON(http.StatusOK, SyncResponse{Result: v.(devotional.SyncResult), Shared: shared})
}

func (dc *DevotionalsController) syncDate(c *gin.Context, date string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dc.syncTimeout)
	defer cancel()

	d, err := dc.store.SyncDate(ctx, date)
	switch {
	case errors.Is(err, devotional.ErrInvalidDate):
		respondBadRequest(c, err.Error())
	case errors.Is(err, devotional.ErrNoDevotional):
		respondNotFound(c, "devotional")
	case errors.Is(err, devotional.ErrStoreFailed):
		respondInternalError(c, err, "devotional sync "+date)
	case err != nil:
		respondUpstreamError(c, err, "devotional sync "+date)
	default:
		c.JSON(http.StatusOK, devotional.Decode(d))
	}
}

// SyncAsync handles POST /api/devotionals/sync/async
// Queues the sync on the background task queue.
func (dc *DevotionalsController) SyncAsync(c *gin.Context) {
	if dc.taskQueue == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	task := tasks.SyncDevotionalsTask{Date: c.Query("date")}
	if task.Date != "" {
		if _, err := time.Parse("2006-01-02", task.Date); err != nil {
			respondBadRequest(c, devotional.ErrInvalidDate.Error())
			return
		}
	}

	id, err := dc.taskQueue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue devotional sync")
		return
	}

	respondAccepted(c, "devotional sync queued", gin.H{"task_id": id})
}

// SyncStatus handles GET /api/devotionals/sync/status
func (dc *DevotionalsController) SyncStatus(c *gin.Context) {
	if dc.progress == nil {
		respondNotFound(c, "sync status")
		return
	}

	progress, err := dc.progress.Latest(c.Request.Context())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "sync status")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get sync progress")
		return
	}

	c.JSON(http.StatusOK, progress)
}
