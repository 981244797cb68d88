package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the analytics worker consuming identification events.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal      *prometheus.CounterVec
	eventsByCategory *prometheus.CounterVec
	queueLag         *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivesight",
			Subsystem: "worker",
			Name:      "identification_events_total",
			Help:      "Total consumed identification events by status.",
		},
		[]string{"service", "status"},
	)
	eventsByCategory := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivesight",
			Subsystem: "worker",
			Name:      "identifications_by_category_total",
			Help:      "Total consumed identification events by sign category.",
		},
		[]string{"service", "category"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drivesight",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between identification and event consumption.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventsTotal, eventsByCategory, queueLag)

	return &WorkerMetrics{
		registry:         registry,
		eventsTotal:      eventsTotal,
		eventsByCategory: eventsByCategory,
		queueLag:         queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RecordEvent(service, category string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventsTotal.WithLabelValues(service, status).Inc()
	if err == nil {
		if category == "" {
			category = "unknown"
		}
		m.eventsByCategory.WithLabelValues(service, category).Inc()
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
