// Package memory holds process-local repository implementations. They back
// the "memory" database driver for local development and serve as test doubles.
package memory

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutRecord struct {
	seq     int64
	workout *domain.Workout
}

// WorkoutRepository implements repository.WorkoutRepository on a guarded map.
// Workouts are cloned on the way in and out so callers never share state with the store.
type WorkoutRepository struct {
	mu      sync.RWMutex
	seq     int64
	records map[primitive.ObjectID]*workoutRecord
	pingErr error
}

var _ repository.WorkoutRepository = (*WorkoutRepository)(nil)

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{
		records: make(map[primitive.ObjectID]*workoutRecord),
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *WorkoutRepository) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.Name == "" || !workout.Type.Valid() {
		return primitive.NilObjectID, fmt.Errorf("%w: workout requires name and a valid type", repository.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(workout)
	return workout.ID, nil
}

func (r *WorkoutRepository) CreateMany(_ context.Context, workouts []*domain.Workout) error {
	for _, w := range workouts {
		if w.Name == "" || !w.Type.Valid() {
			return fmt.Errorf("%w: workout requires name and a valid type", repository.ErrInvalidInput)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range workouts {
		r.insert(w)
	}
	return nil
}

// insert must be called with mu held.
func (r *WorkoutRepository) insert(w *domain.Workout) {
	w.ID = primitive.NewObjectID()
	ts := now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = ts
	}
	w.UpdatedAt = ts
	w.Splits = domain.CloneSplits(w.Splits)

	r.seq++
	r.records[w.ID] = &workoutRecord{seq: r.seq, workout: w.Clone()}
}

func (r *WorkoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec.workout.Clone(), nil
}

func (r *WorkoutRepository) List(_ context.Context, opts repository.ListOptions) ([]domain.Workout, error) {
	r.mu.RLock()
	matched := make([]*workoutRecord, 0, len(r.records))
	for _, rec := range r.records {
		if opts.Type != "" && rec.workout.Type != opts.Type {
			continue
		}
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if opts.NewestFirst {
			a, b := matched[i].workout.CreatedAt, matched[j].workout.CreatedAt
			if !a.Equal(b) {
				return a.After(b)
			}
			return matched[i].seq > matched[j].seq
		}
		return matched[i].seq < matched[j].seq
	})

	workouts := make([]domain.Workout, len(matched))
	for i, rec := range matched {
		workouts[i] = *rec.workout.Clone()
	}
	return workouts, nil
}

func (r *WorkoutRepository) CountByType(_ context.Context, workoutType domain.WorkoutType) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.records {
		if rec.workout.Type == workoutType {
			n++
		}
	}
	return n, nil
}

func (r *WorkoutRepository) Update(_ context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return fmt.Errorf("%w: workout ID is required for update", repository.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	workout.Splits = domain.CloneSplits(workout.Splits)
	workout.UpdatedAt = now()

	stored := rec.workout
	stored.Name = workout.Name
	stored.Splits = domain.CloneSplits(workout.Splits)
	stored.UpdatedAt = workout.UpdatedAt
	return nil
}

func (r *WorkoutRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *WorkoutRepository) Ping(context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pingErr
}

// SetPingError makes subsequent Ping calls fail with err. Passing nil restores health.
func (r *WorkoutRepository) SetPingError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pingErr = err
}
