package main

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/seed"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Seed the template catalog and start the HTTP API",
		Action: runServe,
	}
}

// @title Workout Tracker API
// @version 1.0
// @description Predefined workout templates and personal workouts with splits and exercises.
// @host localhost:8080
// @BasePath /api
func runServe(ctx context.Context, cmd *cli.Command) (err error) {
	cfg, logCloser, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.close()) }()

	// Templates must exist before the first request is served
	inserted, err := seed.Seed(ctx, st.workouts)
	if err != nil {
		return fmt.Errorf("seed predefined workouts: %w", err)
	}
	log.WithField("inserted", inserted).Info("predefined workouts ready")

	metricsManager, gatherer := newMetrics(cfg.Metrics)

	deps := api.RouterDeps{
		WorkoutService:  service.NewWorkoutService(st.workouts, metricsManager),
		Health:          st.workouts,
		Metrics:         metricsManager,
		MetricsGatherer: gatherer,
		CORSOrigins:     cfg.Server.CORSOrigins,
	}

	if cfg.S3.Enabled() {
		fileStorage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
		deps.ExportService = service.NewExportService(st.workouts, st.exports, fileStorage, cfg.S3.PresignExpiry, metricsManager)
		log.WithField("bucket", cfg.S3.BucketName).Info("workout exports enabled")
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	api.SetupRoutes(router, deps)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	// The parent context is already cancelled; give in-flight requests their own deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}

// newMetrics registers collectors on the default registry when metrics are
// exposed. Otherwise they go to a private registry nobody scrapes.
func newMetrics(cfg config.MetricsConfig) (*metrics.Manager, prometheus.Gatherer) {
	if !cfg.Enabled {
		return metrics.NewManager(cfg.Namespace, prometheus.NewRegistry()), nil
	}
	return metrics.NewManager(cfg.Namespace, prometheus.DefaultRegisterer), prometheus.DefaultGatherer
}
