// Package main provides the entry point for the TV showcase catalog server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"tvshowcase/database"
	"tvshowcase/jobs"
	"tvshowcase/middleware"
	"tvshowcase/repository"
	"tvshowcase/sample"
)

func main() {
	log, err := middleware.NewLogger(serviceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded", zap.Error(err))
	}
	cfg := loadConfig()

	// Initialize database
	db, err := database.NewDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	// Initialize schema
	if err := db.InitSchema(); err != nil {
		log.Fatal("failed to initialize schema", zap.Error(err))
	}
	log.Info("database schema initialized", zap.String("driver", cfg.DBDriver))

	ctx := context.Background()
	catalog := repository.NewCatalogRepository(db)
	if cfg.AutoSeed {
		if err := seedIfEmpty(ctx, catalog, log); err != nil {
			log.Fatal("failed to seed catalog", zap.Error(err))
		}
	}
	nextID, err := catalog.LoadNextID(ctx)
	if err != nil {
		log.Fatal("failed to load next video id", zap.Error(err))
	}
	log.Info("catalog ready", zap.Int64("next_id", nextID))

	resetJob := jobs.NewCatalogResetJob(catalog, log)

	// Scheduled resets are optional
	if cfg.ResetSchedule != "" {
		jobManager, err := jobs.NewJobManager(resetJob, cfg.ResetSchedule, log)
		if err != nil {
			log.Fatal("failed to create job manager", zap.Error(err))
		}
		jobManager.Start()
		defer jobManager.Stop()
	}

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set - admin endpoints are open")
	}

	app := &App{
		catalog:  catalog,
		resetJob: resetJob,
		log:      log,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(app, cfg, reg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := runServer(server, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}

// seedIfEmpty seeds the sample catalog into a fresh database
func seedIfEmpty(ctx context.Context, catalog *repository.CatalogRepository, log *zap.Logger) error {
	seeded, err := catalog.IsSeeded(ctx)
	if err != nil || seeded {
		return err
	}

	seed, err := sample.Catalog()
	if err != nil {
		return err
	}
	created, err := catalog.Seed(ctx, seed)
	if err != nil {
		return err
	}
	log.Info("seeded sample catalog", zap.Int("videos", created))
	return nil
}

// runServer serves until SIGINT/SIGTERM, then shuts down gracefully
func runServer(srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
