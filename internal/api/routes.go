package api

import (
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps carries everything SetupRoutes wires into the engine.
type RouterDeps struct {
	WorkoutService  service.WorkoutService
	ExportService   service.ExportService // nil disables the export routes
	Health          Pinger
	Metrics         *metrics.Manager
	MetricsGatherer prometheus.Gatherer // nil disables /metrics
	CORSOrigins     []string
}

func SetupRoutes(router *gin.Engine, deps RouterDeps) {
	RegisterValidators()

	router.Use(
		RequestID(),
		RequestLogger(),
		RequestMetrics(deps.Metrics),
		PanicRecovery(deps.Metrics),
		CORS(deps.CORSOrigins),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()
			if err := deps.Health.Ping(ctx); err != nil {
				requestLogger(c).WithError(err).Warn("health check failed")
				abortWithError(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	workoutHandler := NewWorkoutHandler(deps.WorkoutService)

	workoutGroup := router.Group("/api/workouts")
	{
		workoutGroup.GET("", workoutHandler.ListWorkouts)
		workoutGroup.POST("", workoutHandler.CreateWorkout)
		// Static segments before /:id
		workoutGroup.GET("/predefined", workoutHandler.ListPredefinedWorkouts)
		workoutGroup.GET("/custom", workoutHandler.ListCustomWorkouts)
		workoutGroup.GET("/:id", workoutHandler.GetWorkout)
		workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
		workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		workoutGroup.POST("/:id/copy", workoutHandler.CopyWorkout)

		if deps.ExportService != nil {
			exportHandler := NewExportHandler(deps.ExportService)
			workoutGroup.POST("/:id/export", exportHandler.ExportWorkout)
			workoutGroup.GET("/:id/exports", exportHandler.ListExports)
		}
	}
}
