package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil in cfg disable their routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(StrictTransportSecurityMiddleware())

	health := NewHealthController(cfg.Database, cfg.SyncProgress, cfg.Version)
	router.GET("/health", health.Status)

	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")

	if cfg.Devotionals != nil {
		devotionals := NewDevotionalsController(cfg.Devotionals, cfg.SyncProgress, cfg.TaskQueue)
		api.GET("/devotionals", devotionals.List)
		api.GET("/devotionals/dates", devotionals.Dates)
		api.GET("/devotionals/:program/:date", devotionals.Get)
		api.POST("/devotionals/sync", devotionals.Sync)
		api.POST("/devotionals/sync/async", devotionals.SyncAsync)
		api.GET("/devotionals/sync/status", devotionals.SyncStatus)

		programs := NewProgramsController(cfg.Programs, cfg.Devotionals)
		api.GET("/programs", programs.List)
	}

	if cfg.Bible != nil {
		bible := NewBibleController(cfg.Bible)
		api.GET("/bible/books", bible.Books)
		api.GET("/bible/books/:book/chapters/:chapter", bible.Chapter)

		if cfg.ReadAloud != nil {
			readAloud := NewReadAloudController(cfg.ReadAloud, cfg.Bible)
			api.GET("/readaloud", readAloud.State)
			api.POST("/readaloud/start", readAloud.Start)
			for _, cmd := range []string{"pause", "resume", "restart", "next", "previous", "stop"} {
				api.POST("/readaloud/"+cmd, readAloud.Command(cmd))
			}
		}
	}

	if cfg.Hymnal != nil {
		hymns := NewHymnsController(cfg.Hymnal)
		api.GET("/hymns", hymns.List)
		api.GET("/hymns/categories", hymns.Categories)
		api.GET("/hymns/:number", hymns.Get)
	}

	if cfg.Notes != nil {
		notes := NewNotesController(cfg.Notes)
		api.GET("/notes", notes.List)
		api.POST("/notes", notes.Create)
		api.GET("/notes/:id", notes.Get)
		api.PUT("/notes/:id", notes.Update)
		api.DELETE("/notes/:id", notes.Delete)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
