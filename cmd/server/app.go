package main

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logging"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v3"
)

// store bundles the repositories of the configured database driver.
type store struct {
	workouts repository.WorkoutRepository
	exports  repository.ExportRepository
	close    func() error
}

// bootstrap loads configuration and sets up logging. The returned closer flushes the log file.
func bootstrap(cmd *cli.Command) (config.Config, io.Closer, error) {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return cfg, nil, fmt.Errorf("could not load config: %w", err)
	}
	logCloser := logging.Setup(cfg.Log)
	log.WithFields(log.Fields{
		"driver":  cfg.Database.Driver,
		"address": cfg.Server.Address,
		"exports": cfg.S3.Enabled(),
		"metrics": cfg.Metrics.Enabled,
	}).Info("configuration loaded")
	return cfg, logCloser, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory store; data is lost on restart")
		return &store{
			workouts: memory.NewWorkoutRepository(),
			exports:  memory.NewExportRepository(),
			close:    func() error { return nil },
		}, nil
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)
		log.WithField("database", cfg.Name).Info("database connection established")

		indexCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		mongo.EnsureIndexes(indexCtx, db)

		return &store{
			workouts: mongo.NewMongoWorkoutRepository(db),
			exports:  mongo.NewMongoExportRepository(db),
			close: func() error {
				log.Info("disconnecting MongoDB")
				return mongo.DisconnectDB(client)
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
