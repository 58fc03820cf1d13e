package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrInvalidInput = RepositoryError("invalid input")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ListOptions narrows and orders a workout listing.
type ListOptions struct {
	Type        domain.WorkoutType // Empty means all types
	NewestFirst bool               // Sort by createdAt descending; natural order otherwise
}

// WorkoutRepository defines the interface for interacting with workout data.
// Every mutation touches exactly one document.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, workouts []*domain.Workout) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context, opts ListOptions) ([]domain.Workout, error)
	CountByType(ctx context.Context, workoutType domain.WorkoutType) (int64, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Ping(ctx context.Context) error
}

// ExportRepository defines the interface for interacting with workout export metadata.
type ExportRepository interface {
	Create(ctx context.Context, export *domain.Export) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Export, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Export, error) // Newest first
}
