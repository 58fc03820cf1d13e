package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrPredefinedReadOnly = errors.New("predefined workouts cannot be modified; copy it instead")
	ErrValidationFailed   = errors.New("workout validation failed")
)

// Workout mutation kinds reported to metrics
const (
	eventCreated = "created"
	eventCopied  = "copied"
	eventUpdated = "updated"
	eventDeleted = "deleted"
)

type WorkoutService interface {
	// ListWorkouts returns all workouts, or only those of workoutType when it is not empty.
	ListWorkouts(ctx context.Context, workoutType domain.WorkoutType) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	CreateWorkout(ctx context.Context, name string, splits []domain.WorkoutSplit) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, id primitive.ObjectID, name string, splits []domain.WorkoutSplit) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, id primitive.ObjectID) error
	CopyWorkout(ctx context.Context, sourceID primitive.ObjectID, newName string) (*domain.Workout, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	metrics     *metrics.Manager
}

// NewWorkoutService creates a new instance of workoutService. A nil metrics manager disables counters.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, metricsManager *metrics.Manager) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		metrics:     metricsManager,
	}
}

func (s *workoutService) ListWorkouts(ctx context.Context, workoutType domain.WorkoutType) ([]domain.Workout, error) {
	if workoutType != "" && !workoutType.Valid() {
		return nil, fmt.Errorf("%w: unknown workout type %q", ErrValidationFailed, workoutType)
	}
	// Templates keep catalog order; everything else shows the newest first.
	opts := repository.ListOptions{
		Type:        workoutType,
		NewestFirst: workoutType != domain.WorkoutTypePredefined,
	}
	workouts, err := s.workoutRepo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout %s: %w", id.Hex(), err)
	}
	return workout, nil
}

// CreateWorkout stores a new custom workout. The type is always custom,
// whatever the caller asked for.
func (s *workoutService) CreateWorkout(ctx context.Context, name string, splits []domain.WorkoutSplit) (*domain.Workout, error) {
	name, err := validateWorkout(name, splits)
	if err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		Name:   name,
		Type:   domain.WorkoutTypeCustom,
		Splits: domain.CloneSplits(splits),
	}
	if _, err = s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}

	s.metrics.WorkoutEvent(eventCreated)
	log.WithFields(log.Fields{"workoutId": workout.ID.Hex(), "name": workout.Name}).Debug("workout created")
	return workout, nil
}

// UpdateWorkout replaces name and splits of a custom workout.
func (s *workoutService) UpdateWorkout(ctx context.Context, id primitive.ObjectID, name string, splits []domain.WorkoutSplit) (*domain.Workout, error) {
	name, err := validateWorkout(name, splits)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsPredefined() {
		return nil, ErrPredefinedReadOnly
	}

	existing.Name = name
	existing.Splits = domain.CloneSplits(splits)
	if err = s.workoutRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between the read and the write
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("update workout %s: %w", id.Hex(), err)
	}

	s.metrics.WorkoutEvent(eventUpdated)
	return existing, nil
}

// DeleteWorkout removes a custom workout permanently.
func (s *workoutService) DeleteWorkout(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.GetWorkout(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsPredefined() {
		return ErrPredefinedReadOnly
	}

	if err = s.workoutRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return fmt.Errorf("delete workout %s: %w", id.Hex(), err)
	}

	s.metrics.WorkoutEvent(eventDeleted)
	return nil
}

// CopyWorkout duplicates any workout into a new custom one named newName.
// Splits and exercises are deep-copied, so later edits to the copy never reach the source.
func (s *workoutService) CopyWorkout(ctx context.Context, sourceID primitive.ObjectID, newName string) (*domain.Workout, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: new_name is required", ErrValidationFailed)
	}

	source, err := s.GetWorkout(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		Name:   newName,
		Type:   domain.WorkoutTypeCustom,
		Splits: domain.CloneSplits(source.Splits),
	}
	if _, err = s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("copy workout %s: %w", sourceID.Hex(), err)
	}

	s.metrics.WorkoutEvent(eventCopied)
	log.WithFields(log.Fields{
		"sourceId":  sourceID.Hex(),
		"workoutId": workout.ID.Hex(),
	}).Debug("workout copied")
	return workout, nil
}

// validateWorkout trims the name and checks the nested exercises.
// It returns the trimmed name.
func validateWorkout(name string, splits []domain.WorkoutSplit) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	for i, split := range splits {
		for j, ex := range split.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return "", fmt.Errorf("%w: splits[%d].exercises[%d].name is required", ErrValidationFailed, i, j)
			}
			if ex.Sets < 1 {
				return "", fmt.Errorf("%w: splits[%d].exercises[%d].sets must be at least 1", ErrValidationFailed, i, j)
			}
		}
	}
	return name, nil
}
