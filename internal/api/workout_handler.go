package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs for API (Data Transfer Objects) ---

type ExerciseRequest struct {
	Name   string `json:"name" binding:"required,notblank"`
	Sets   int    `json:"sets" binding:"min=1"`
	Reps   string `json:"reps"`
	Weight string `json:"weight"` // Optional, e.g. "50kg"
	Notes  string `json:"notes"`
}

type SplitRequest struct {
	Day       string            `json:"day"`
	Exercises []ExerciseRequest `json:"exercises" binding:"dive"`
}

// CreateWorkoutRequest defines the expected JSON for creating a workout.
// Type is accepted for client symmetry but ignored: new workouts are always custom.
type CreateWorkoutRequest struct {
	Name   string         `json:"name" binding:"required,notblank"`
	Type   string         `json:"type"`
	Splits []SplitRequest `json:"splits" binding:"dive"`
}

// UpdateWorkoutRequest replaces name and splits. Omitted splits means none.
type UpdateWorkoutRequest struct {
	Name   string         `json:"name" binding:"required,notblank"`
	Splits []SplitRequest `json:"splits" binding:"dive"`
}

// CopyWorkoutRequest is the optional body form of the copy call; the new_name query parameter wins.
type CopyWorkoutRequest struct {
	NewName string `json:"newName"`
}

type ExerciseResponse struct {
	Name   string `json:"name"`
	Sets   int    `json:"sets"`
	Reps   string `json:"reps"`
	Weight string `json:"weight,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type SplitResponse struct {
	Day       string             `json:"day"`
	Exercises []ExerciseResponse `json:"exercises"`
}

// WorkoutResponse is the DTO for returning workout details.
type WorkoutResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      domain.WorkoutType `json:"type"`
	Splits    []SplitResponse    `json:"splits"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
// Nested slices are never nil, so they encode as [] rather than null.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{Splits: []SplitResponse{}}
	}
	splits := make([]SplitResponse, len(w.Splits))
	for i, s := range w.Splits {
		exercises := make([]ExerciseResponse, len(s.Exercises))
		for j, e := range s.Exercises {
			exercises[j] = ExerciseResponse{
				Name:   e.Name,
				Sets:   e.Sets,
				Reps:   e.Reps,
				Weight: e.Weight,
				Notes:  e.Notes,
			}
		}
		splits[i] = SplitResponse{Day: s.Day, Exercises: exercises}
	}
	return WorkoutResponse{
		ID:        w.ID.Hex(),
		Name:      w.Name,
		Type:      w.Type,
		Splits:    splits,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// MapWorkoutsToResponse converts a slice of domain.Workout to a slice of WorkoutResponse DTO.
func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func mapSplitsFromRequest(splits []SplitRequest) []domain.WorkoutSplit {
	out := make([]domain.WorkoutSplit, len(splits))
	for i, s := range splits {
		exercises := make([]domain.Exercise, len(s.Exercises))
		for j, e := range s.Exercises {
			exercises[j] = domain.Exercise{
				Name:   strings.TrimSpace(e.Name),
				Sets:   e.Sets,
				Reps:   e.Reps,
				Weight: e.Weight,
				Notes:  e.Notes,
			}
		}
		out[i] = domain.WorkoutSplit{Day: s.Day, Exercises: exercises}
	}
	return out
}

// parseWorkoutID reads the :id path parameter. Anything that is not an
// ObjectID cannot name a stored workout, so it is reported as not found.
func parseWorkoutID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, service.ErrWorkoutNotFound.Error())
		return primitive.NilObjectID, false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP status codes.
func handleServiceError(c *gin.Context, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPredefinedReadOnly):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		// Log the actual error; the client only gets the generic message
		_ = c.Error(err)
		requestLogger(c).WithError(err).Error(fallbackMessage)
		abortWithError(c, http.StatusInternalServerError, fallbackMessage)
	}
}

// --- Handler Methods ---

func (h *WorkoutHandler) listWorkouts(c *gin.Context, workoutType domain.WorkoutType) {
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), workoutType)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// ListWorkouts godoc
// @Summary List all workouts
// @Tags Workouts
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	h.listWorkouts(c, "")
}

// ListPredefinedWorkouts godoc
// @Summary List the predefined workout templates
// @Tags Workouts
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Router /workouts/predefined [get]
func (h *WorkoutHandler) ListPredefinedWorkouts(c *gin.Context) {
	h.listWorkouts(c, domain.WorkoutTypePredefined)
}

// ListCustomWorkouts godoc
// @Summary List the user's custom workouts, newest first
// @Tags Workouts
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Router /workouts/custom [get]
func (h *WorkoutHandler) ListCustomWorkouts(c *gin.Context) {
	h.listWorkouts(c, domain.WorkoutTypeCustom)
}

// GetWorkout godoc
// @Summary Get a workout by ID
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// CreateWorkout godoc
// @Summary Create a custom workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param workout body CreateWorkoutRequest true "Workout details"
// @Success 201 {object} WorkoutResponse "Workout created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), req.Name, mapSplitsFromRequest(req.Splits))
	if err != nil {
		handleServiceError(c, err, "Failed to create workout.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// UpdateWorkout godoc
// @Summary Replace the name and splits of a custom workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param id path string true "Workout ID"
// @Param workout body UpdateWorkoutRequest true "New name and splits"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Predefined workouts are read-only"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [put]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), id, req.Name, mapSplitsFromRequest(req.Splits))
	if err != nil {
		handleServiceError(c, err, "Failed to update workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout godoc
// @Summary Delete a custom workout
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} gin.H "Workout deleted"
// @Failure 403 {object} gin.H "Predefined workouts are read-only"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Failed to delete workout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "workout deleted"})
}

// CopyWorkout godoc
// @Summary Copy a workout into a new custom workout
// @Description Deep-copies the splits of any workout (typically a predefined template) under a new name.
// @Tags Workouts
// @Produce json
// @Param id path string true "Source workout ID"
// @Param new_name query string true "Name of the copy"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} gin.H "new_name missing or blank"
// @Failure 404 {object} gin.H "Source workout not found"
// @Router /workouts/{id}/copy [post]
func (h *WorkoutHandler) CopyWorkout(c *gin.Context) {
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}

	newName := c.Query("new_name")
	if strings.TrimSpace(newName) == "" && c.Request.ContentLength > 0 {
		var req CopyWorkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
		newName = req.NewName
	}

	workout, err := h.workoutService.CopyWorkout(c.Request.Context(), id, newName)
	if err != nil {
		handleServiceError(c, err, "Failed to copy workout.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}
