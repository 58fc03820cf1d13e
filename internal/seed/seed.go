// Package seed installs the predefined workout catalog.
package seed

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

//go:embed catalog.json
var catalogJSON []byte

type template struct {
	Name   string                `json:"name"`
	Splits []domain.WorkoutSplit `json:"splits"`
}

// Catalog decodes the embedded templates into fresh predefined workouts.
// Every call returns new values, so callers may mutate the result freely.
func Catalog() ([]*domain.Workout, error) {
	var templates []template
	if err := json.Unmarshal(catalogJSON, &templates); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}

	workouts := make([]*domain.Workout, 0, len(templates))
	for _, t := range templates {
		workouts = append(workouts, &domain.Workout{
			Name:   t.Name,
			Type:   domain.WorkoutTypePredefined,
			Splits: domain.CloneSplits(t.Splits),
		})
	}
	return workouts, nil
}

// Seed inserts the catalog when no predefined workout exists yet and returns
// how many templates were inserted. The guard is a query against the store,
// so running Seed on every boot never duplicates templates.
func Seed(ctx context.Context, repo repository.WorkoutRepository) (int, error) {
	count, err := repo.CountByType(ctx, domain.WorkoutTypePredefined)
	if err != nil {
		return 0, fmt.Errorf("count predefined workouts: %w", err)
	}
	if count > 0 {
		log.WithField("count", count).Debug("predefined workouts already present, skipping seed")
		return 0, nil
	}

	workouts, err := Catalog()
	if err != nil {
		return 0, err
	}
	if err = repo.CreateMany(ctx, workouts); err != nil {
		return 0, fmt.Errorf("insert predefined workouts: %w", err)
	}

	log.WithField("count", len(workouts)).Info("predefined workouts initialized")
	return len(workouts), nil
}
