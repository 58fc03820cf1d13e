package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "workout-tracker",
		Usage: "Workout catalog API: predefined templates and personal workouts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory containing config.yaml",
				Value:   ".",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			newSeedCommand(),
		},
		// Running without a subcommand starts the server
		Action: runServe,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("workout-tracker exited with error")
	}
}
