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

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulate/internal/circulation"
	"github.com/mrlokans/circulate/internal/config"
	"github.com/mrlokans/circulate/internal/database"
	"github.com/mrlokans/circulate/internal/database/books"
	"github.com/mrlokans/circulate/internal/database/checkouts"
	"github.com/mrlokans/circulate/internal/database/outbox"
	"github.com/mrlokans/circulate/internal/database/syncruns"
	"github.com/mrlokans/circulate/internal/database/users"
	"github.com/mrlokans/circulate/internal/entities"
	"github.com/mrlokans/circulate/internal/scheduler"
	"github.com/mrlokans/circulate/internal/server"
	"github.com/mrlokans/circulate/internal/syncer"
	"github.com/mrlokans/circulate/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the store, repositories, reconciliation engine, background
// sync, and the authority HTTP surface, then serves.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Circulate v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db.DB)
	checkoutsRepo := checkouts.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	outboxRepo := outbox.NewRepository(db.DB)
	runsRepo := syncruns.NewRepository(db.DB)
	ledger := circulation.NewLedger(booksRepo, checkoutsRepo, outboxRepo)

	// The reconciliation engine only exists when a remote authority is
	// configured; a standalone deployment is the authority itself.
	var engine *syncer.Engine
	if cfg.Remote.BaseURL != "" {
		engine = syncer.NewEngine(
			syncer.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token),
			booksRepo, checkoutsRepo, outboxRepo, runsRepo,
		)
	} else {
		log.Printf("WARNING: REMOTE_BASE_URL is not set; running as the remote authority, background sync disabled.")
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Tasks.Enabled && engine != nil {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSyncRemoteQueue(engine),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Sync.Enabled {
			mode := entities.SyncMode(cfg.Sync.Mode)
			if mode != entities.SyncModeFull {
				mode = entities.SyncModePush
			}
			syncScheduler = scheduler.NewSyncScheduler(taskClient, cfg.Sync.Schedule, mode)
			if err := syncScheduler.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start sync scheduler: %v", err)
			}
		}
	}

	router := server.NewRouter(server.RouterConfig{
		Books:     booksRepo,
		Checkouts: checkoutsRepo,
		Ledger:    ledger,
		Verifier:  usersRepo,
		Version:   version,
	})

	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
