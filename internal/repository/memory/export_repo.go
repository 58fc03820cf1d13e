package memory

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportRepository implements repository.ExportRepository in memory.
type ExportRepository struct {
	mu      sync.RWMutex
	exports []domain.Export
}

var _ repository.ExportRepository = (*ExportRepository)(nil)

func NewExportRepository() *ExportRepository {
	return &ExportRepository{}
}

func (r *ExportRepository) Create(_ context.Context, export *domain.Export) (primitive.ObjectID, error) {
	if export.WorkoutID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: export requires workoutId and objectKey", repository.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	export.ID = primitive.NewObjectID()
	export.ExportedAt = now()
	r.exports = append(r.exports, *export)
	return export.ID, nil
}

func (r *ExportRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Export, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.exports {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ExportRepository) GetByWorkoutID(_ context.Context, workoutID primitive.ObjectID) ([]domain.Export, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exports := []domain.Export{}
	// Walk backwards so equal timestamps still come out newest first.
	for i := len(r.exports) - 1; i >= 0; i-- {
		if r.exports[i].WorkoutID == workoutID {
			exports = append(exports, r.exports[i])
		}
	}
	sort.SliceStable(exports, func(i, j int) bool {
		return exports[i].ExportedAt.After(exports[j].ExportedAt)
	})
	return exports, nil
}
