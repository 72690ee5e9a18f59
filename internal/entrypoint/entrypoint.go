package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"

	"github.com/mrlokans/fellowship/internal/churchapi"
	"github.com/mrlokans/fellowship/internal/config"
	"github.com/mrlokans/fellowship/internal/content"
	"github.com/mrlokans/fellowship/internal/database"
	"github.com/mrlokans/fellowship/internal/database/devotionals"
	"github.com/mrlokans/fellowship/internal/database/notes"
	"github.com/mrlokans/fellowship/internal/database/settings"
	syncrepo "github.com/mrlokans/fellowship/internal/database/sync"
	"github.com/mrlokans/fellowship/internal/devotional"
	http_controllers "github.com/mrlokans/fellowship/internal/http"
	"github.com/mrlokans/fellowship/internal/readaloud"
	"github.com/mrlokans/fellowship/internal/scheduler"
	"github.com/mrlokans/fellowship/internal/speech"
	"github.com/mrlokans/fellowship/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// WithCORS wraps handler with CORS headers for the allowed origins.
func WithCORS(handler http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(handler)
}

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: handler,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT or SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// NewAPIClient creates the church API client from configuration.
func NewAPIClient(cfg *config.Config) *churchapi.Client {
	return churchapi.NewClient(churchapi.Config{
		BaseURL:           cfg.API.URL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})
}

// NewDevotionalStore wires the devotional cache to the API client and
// records sync progress and status in db.
func NewDevotionalStore(db *database.Database, remote devotional.Remote) *devotional.Store {
	return devotional.NewStore(
		devotionals.NewRepository(db.DB),
		remote,
		devotional.WithProgress(syncrepo.NewRepository(db.DB)),
		devotional.WithStatus(settings.NewRepository(db.DB)),
	)
}

// NewReadAloud creates a read-aloud controller over the configured speech program.
func NewReadAloud(cfg *config.Config) *readaloud.Controller {
	speaker := speech.New(speech.Config{
		Command: cfg.Speech.Command,
		Args:    cfg.Speech.Args,
	})
	return readaloud.NewController(speaker, readaloud.Options{
		Language: cfg.Speech.Language,
		Rate:     cfg.Speech.Rate,
		Pitch:    cfg.Speech.Pitch,
	})
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Fellowship v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bible, err := content.OpenBible(cfg.Content.BiblePath)
	if err != nil {
		log.Fatalf("Failed to load Bible: %v", err)
	}
	hymnal, err := content.OpenHymnal(cfg.Content.HymnalPath)
	if err != nil {
		log.Fatalf("Failed to load hymnal: %v", err)
	}
	log.Printf("Content loaded: %d books, %d hymns", len(bible.Books()), hymnal.Len())

	apiClient := NewAPIClient(cfg)
	store := NewDevotionalStore(db, apiClient)
	if err := store.Initialize(context.Background()); err != nil {
		log.Printf("WARNING: devotional cache unavailable: %v", err)
	}
	syncProgress := syncrepo.NewRepository(db.DB)

	player := NewReadAloud(cfg)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			SyncTimeout:     cfg.Tasks.SyncTimeout,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewSyncDevotionalsQueue(store, cfg.Tasks.SyncTimeout))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic devotional sync
	syncScheduler := scheduler.NewDevotionalSyncScheduler(store, scheduler.Config{
		Enabled:      cfg.DevotionalSync.Enabled,
		Schedule:     cfg.DevotionalSync.Schedule,
		RunOnStartup: cfg.DevotionalSync.OnStartup,
		Timeout:      cfg.DevotionalSync.Timeout,
		Guard:        syncProgress,
	})
	if err := syncScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: devotional sync scheduler not started: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Devotionals:    store,
		Programs:       apiClient,
		Notes:          notes.NewRepository(db.DB),
		SyncProgress:   syncProgress,
		Bible:          bible,
		Hymnal:         hymnal,
		ReadAloud:      player,
		Version:        version,
		MetricsEnabled: cfg.Metrics.Enabled,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		player.Stop()
		syncScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(WithCORS(router, cfg.HTTP.CORSAllowedOrigins), cfg, onShutdown)
}
