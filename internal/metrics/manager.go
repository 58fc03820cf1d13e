package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const subsystem = "api"

// Manager owns the service's Prometheus collectors.
type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterWorkoutEvents *prometheus.CounterVec
	CounterPanics        prometheus.Counter

	// gauges
	GaugeInFlight prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("workout_tracker", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("workout_tracker", reg), reg
}

func NewManager(namespace string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		CounterWorkoutEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workout_events_total",
			Help:      "Workout mutations by kind (created, copied, updated, deleted, exported)",
		}, []string{"event"}),
		CounterPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_panics_total",
			Help:      "The total number of recovered handler panics",
		}),
		GaugeInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight_requests",
			Help:      "Current number of requests being served",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// WorkoutEvent increments the mutation counter. Safe on a nil manager so
// callers that run without metrics need no guards.
func (m *Manager) WorkoutEvent(event string) {
	if m == nil {
		return
	}
	m.CounterWorkoutEvents.WithLabelValues(event).Inc()
}
