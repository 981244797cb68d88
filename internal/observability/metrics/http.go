package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics covers the API surface plus the identification pipeline.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	identificationsTotal   *prometheus.CounterVec
	identificationDuration *prometheus.HistogramVec
	fallbackAttemptsTotal  prometheus.Counter
	confidenceDistribution prometheus.Histogram
	cacheLookupsTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivesight",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drivesight",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drivesight",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	identificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivesight",
			Subsystem: "pipeline",
			Name:      "identifications_total",
			Help:      "Total identification pipeline runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	identificationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drivesight",
			Subsystem: "pipeline",
			Name:      "identification_duration_seconds",
			Help:      "Identification pipeline duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	fallbackAttemptsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "drivesight",
			Subsystem: "pipeline",
			Name:      "fallback_attempts_total",
			Help:      "Total identifications that attempted the fallback model variant.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	confidenceDistribution := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "drivesight",
			Subsystem: "pipeline",
			Name:      "confidence",
			Help:      "Distribution of reported confidence for successful identifications.",
			Buckets:   []float64{0, 10, 25, 50, 70, 75, 80, 90, 95, 100},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivesight",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total identify result cache lookups by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		identificationsTotal,
		identificationDuration,
		fallbackAttemptsTotal,
		confidenceDistribution,
		cacheLookupsTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		identificationsTotal:   identificationsTotal,
		identificationDuration: identificationDuration,
		fallbackAttemptsTotal:  fallbackAttemptsTotal,
		confidenceDistribution: confidenceDistribution,
		cacheLookupsTotal:      cacheLookupsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses parameterized routes so path labels stay bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/sign/category/"):
		return "/api/sign/category/{category}"
	case strings.HasPrefix(path, "/api/sign/") && path != "/api/sign/identify":
		return "/api/sign/{id}"
	case strings.HasPrefix(path, "/api/questions/"):
		return "/api/questions/{state}"
	default:
		return path
	}
}

// ObserveIdentification implements ports.PipelineObserver for the API service.
func (m *HTTPServerMetrics) ObserveIdentification(outcome string, usedFallback bool, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.identificationsTotal.WithLabelValues("api", outcome).Inc()
	m.identificationDuration.WithLabelValues("api", outcome).Observe(duration.Seconds())
	if usedFallback {
		m.fallbackAttemptsTotal.Inc()
	}
}

func (m *HTTPServerMetrics) ObserveConfidence(confidence int) {
	m.confidenceDistribution.Observe(float64(confidence))
}

func (m *HTTPServerMetrics) RecordCacheLookup(service string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(service, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
