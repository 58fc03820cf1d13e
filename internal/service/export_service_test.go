package service_test

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/service"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key + "?signed=1", nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type failingExportRepo struct {
	repository.ExportRepository
}

func (failingExportRepo) Create(context.Context, *domain.Export) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("write concern error")
}

func TestExportWorkout(t *testing.T) {
	ctx := context.Background()
	workouts := memory.NewWorkoutRepository()
	exports := memory.NewExportRepository()
	store := newFakeStorage()
	svc := service.NewExportService(workouts, exports, store, time.Hour, nil)

	workout := &domain.Workout{Name: "Upper/Lower", Type: domain.WorkoutTypeCustom, Splits: randomSplits(2)}
	_, err := workouts.Create(ctx, workout)
	require.NoError(t, err)

	exported, err := svc.ExportWorkout(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, workout.ID, exported.WorkoutID)
	assert.True(t, strings.HasPrefix(exported.ObjectKey, "exports/"+workout.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(exported.ObjectKey, ".json"))
	assert.Equal(t, "application/json", exported.ContentType)
	assert.Contains(t, exported.DownloadURL, exported.ObjectKey)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exported.ExpiresAt, time.Minute)

	body, ok := store.objects[exported.ObjectKey]
	require.True(t, ok)
	assert.EqualValues(t, len(body), exported.Size)

	var snapshot domain.Workout
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.Equal(t, workout.Name, snapshot.Name)
	assert.Equal(t, workout.Splits, snapshot.Splits)

	list, err := svc.ListExports(ctx, workout.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, exported.ID, list[0].ID)
	assert.NotEmpty(t, list[0].DownloadURL)
}

func TestExportWorkout_NotFound(t *testing.T) {
	svc := service.NewExportService(memory.NewWorkoutRepository(), memory.NewExportRepository(), newFakeStorage(), 0, nil)

	_, err := svc.ExportWorkout(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)

	_, err = svc.ListExports(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}

func TestExportWorkout_StorageFailure(t *testing.T) {
	ctx := context.Background()
	workouts := memory.NewWorkoutRepository()
	store := newFakeStorage()
	store.putErr = errors.New("bucket does not exist")
	svc := service.NewExportService(workouts, memory.NewExportRepository(), store, 0, nil)

	workout := &domain.Workout{Name: "x", Type: domain.WorkoutTypeCustom}
	_, err := workouts.Create(ctx, workout)
	require.NoError(t, err)

	_, err = svc.ExportWorkout(ctx, workout.ID)
	assert.ErrorIs(t, err, store.putErr)
}

func TestExportWorkout_MetadataFailureRemovesObject(t *testing.T) {
	ctx := context.Background()
	workouts := memory.NewWorkoutRepository()
	store := newFakeStorage()
	svc := service.NewExportService(workouts, failingExportRepo{}, store, 0, nil)

	workout := &domain.Workout{Name: "x", Type: domain.WorkoutTypeCustom}
	_, err := workouts.Create(ctx, workout)
	require.NoError(t, err)

	_, err = svc.ExportWorkout(ctx, workout.ID)
	require.Error(t, err)
	assert.Empty(t, store.objects)
}
