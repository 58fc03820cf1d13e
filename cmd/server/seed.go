package main

import (
	"alcyxob/workout-tracker/internal/seed"
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
)

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Insert the predefined workout templates if none exist, then exit",
		Action: runSeed,
	}
}

func runSeed(ctx context.Context, cmd *cli.Command) (err error) {
	cfg, logCloser, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.close()) }()

	inserted, err := seed.Seed(ctx, st.workouts)
	if err != nil {
		return fmt.Errorf("seed predefined workouts: %w", err)
	}
	log.WithField("inserted", inserted).Info("seeding finished")
	return nil
}
