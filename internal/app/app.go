package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/evapo/internal/controllers/restserver"
	"github.com/chrissnell/evapo/internal/database"
	"github.com/chrissnell/evapo/internal/etservice"
	"github.com/chrissnell/evapo/internal/log"
	"github.com/chrissnell/evapo/internal/metrics"
	"github.com/chrissnell/evapo/internal/storage"
	"github.com/chrissnell/evapo/internal/storage/results"
	"github.com/chrissnell/evapo/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger

	// Interval between scheduled computations of the previous day. Zero
	// disables the schedule.
	Interval time.Duration
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config:   cfg,
		logger:   logger,
		Interval: 6 * time.Hour,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()

	// Readings database
	var source database.ReadingSource
	if ts := a.config.Storage.TimescaleDB; ts != nil && ts.ConnectionString != "" {
		client := database.NewClient(ts.ConnectionString, log.Named("database"))
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close()
		source = client
	} else {
		log.Warn("no TimescaleDB storage configured; site computations are disabled")
	}

	// Results store
	var store *results.Store
	if rs := a.config.Storage.Results; rs != nil && rs.Path != "" {
		var err error
		store, err = results.New(ctx, rs.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var resultStore storage.ResultStore
	if store != nil {
		resultStore = store
	}
	svc := etservice.New(a.config, source, resultStore, m, log.Named("etservice"))

	// Scheduled computation of the previous day, written by the storage engine
	if store != nil && source != nil && a.Interval > 0 && len(a.config.Sites) > 0 {
		runs := store.StartStorageEngine(ctx, &wg)
		svc.Start(ctx, &wg, a.Interval, runs)
	}

	// Controllers
	started := 0
	for _, con := range a.config.Controllers {
		switch con.Type {
		case "rest":
			if con.RESTServer == nil {
				return fmt.Errorf("rest controller has no configuration")
			}
			ctrl, err := restserver.NewController(ctx, &wg, *con.RESTServer, svc, m, log.Named("restserver"))
			if err != nil {
				return fmt.Errorf("could not create REST server: %w", err)
			}
			if err := ctrl.StartController(); err != nil {
				return err
			}
			started++
		default:
			return fmt.Errorf("unknown controller type: %s", con.Type)
		}
	}
	if started == 0 {
		log.Warn("no controllers configured")
	}

	log.Infof("Application started successfully with %d sites", len(a.config.Sites))

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
