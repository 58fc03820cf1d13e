package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	eventExported     = "exported"
	exportContentType = "application/json"
)

// ExportedWorkout is export metadata plus a temporary download link.
type ExportedWorkout struct {
	domain.Export
	DownloadURL string
	ExpiresAt   time.Time
}

type ExportService interface {
	// ExportWorkout writes a JSON snapshot of the workout to object storage.
	ExportWorkout(ctx context.Context, workoutID primitive.ObjectID) (*ExportedWorkout, error)
	// ListExports returns the workout's exports, newest first, with fresh download links.
	ListExports(ctx context.Context, workoutID primitive.ObjectID) ([]ExportedWorkout, error)
}

type exportService struct {
	workoutRepo   repository.WorkoutRepository
	exportRepo    repository.ExportRepository
	fileStorage   storage.FileStorage
	presignExpiry time.Duration
	metrics       *metrics.Manager
}

func NewExportService(
	workoutRepo repository.WorkoutRepository,
	exportRepo repository.ExportRepository,
	fileStorage storage.FileStorage,
	presignExpiry time.Duration,
	metricsManager *metrics.Manager,
) ExportService {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		workoutRepo:   workoutRepo,
		exportRepo:    exportRepo,
		fileStorage:   fileStorage,
		presignExpiry: presignExpiry,
		metrics:       metricsManager,
	}
}

func (s *exportService) ExportWorkout(ctx context.Context, workoutID primitive.ObjectID) (*ExportedWorkout, error) {
	workout, err := s.loadWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(workout)
	if err != nil {
		return nil, fmt.Errorf("encode workout %s: %w", workoutID.Hex(), err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", workoutID.Hex(), uuid.NewString())
	if err = s.fileStorage.PutObject(ctx, objectKey, exportContentType, body); err != nil {
		return nil, err
	}

	export := &domain.Export{
		WorkoutID:   workoutID,
		ObjectKey:   objectKey,
		ContentType: exportContentType,
		Size:        int64(len(body)),
	}
	if _, err = s.exportRepo.Create(ctx, export); err != nil {
		// Do not leave an object nobody can find
		if delErr := s.fileStorage.DeleteObject(ctx, objectKey); delErr != nil {
			log.WithError(delErr).WithField("key", objectKey).Warn("failed to remove orphaned export object")
		}
		return nil, fmt.Errorf("record export: %w", err)
	}

	s.metrics.WorkoutEvent(eventExported)
	return s.withDownloadURL(ctx, *export)
}

func (s *exportService) ListExports(ctx context.Context, workoutID primitive.ObjectID) ([]ExportedWorkout, error) {
	if _, err := s.loadWorkout(ctx, workoutID); err != nil {
		return nil, err
	}

	exports, err := s.exportRepo.GetByWorkoutID(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}

	result := make([]ExportedWorkout, 0, len(exports))
	for _, e := range exports {
		exported, err := s.withDownloadURL(ctx, e)
		if err != nil {
			return nil, err
		}
		result = append(result, *exported)
	}
	return result, nil
}

func (s *exportService) loadWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout %s: %w", workoutID.Hex(), err)
	}
	return workout, nil
}

func (s *exportService) withDownloadURL(ctx context.Context, export domain.Export) (*ExportedWorkout, error) {
	expiresAt := time.Now().UTC().Add(s.presignExpiry)
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, export.ObjectKey, s.presignExpiry)
	if err != nil {
		return nil, err
	}
	return &ExportedWorkout{Export: export, DownloadURL: url, ExpiresAt: expiresAt}, nil
}
