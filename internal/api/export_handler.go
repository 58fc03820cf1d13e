package api

import (
	"alcyxob/workout-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExportHandler exposes workout snapshots stored in object storage.
type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportResponse is the DTO for a stored workout snapshot.
type ExportResponse struct {
	ID          string    `json:"id"`
	WorkoutID   string    `json:"workoutId"`
	ObjectKey   string    `json:"objectKey"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	ExportedAt  time.Time `json:"exportedAt"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func MapExportToResponse(e *service.ExportedWorkout) ExportResponse {
	return ExportResponse{
		ID:          e.ID.Hex(),
		WorkoutID:   e.WorkoutID.Hex(),
		ObjectKey:   e.ObjectKey,
		ContentType: e.ContentType,
		Size:        e.Size,
		ExportedAt:  e.ExportedAt,
		DownloadURL: e.DownloadURL,
		ExpiresAt:   e.ExpiresAt,
	}
}

// ExportWorkout godoc
// @Summary Export a workout snapshot to object storage
// @Tags Exports
// @Produce json
// @Param id path string true "Workout ID"
// @Success 201 {object} ExportResponse
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/{id}/export [post]
func (h *ExportHandler) ExportWorkout(c *gin.Context) {
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}

	exported, err := h.exportService.ExportWorkout(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to export workout.")
		return
	}
	c.JSON(http.StatusCreated, MapExportToResponse(exported))
}

// ListExports godoc
// @Summary List exports of a workout, newest first
// @Tags Exports
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {array} ExportResponse
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id}/exports [get]
func (h *ExportHandler) ListExports(c *gin.Context) {
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}

	exports, err := h.exportService.ListExports(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to list exports.")
		return
	}

	responses := make([]ExportResponse, len(exports))
	for i := range exports {
		responses[i] = MapExportToResponse(&exports[i])
	}
	c.JSON(http.StatusOK, responses)
}
