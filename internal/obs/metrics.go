package obs

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

type Metrics struct {
	registry            *prometheus.Registry
	requests            *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	collaboratorErrors  *prometheus.CounterVec
	tasksEnqueued       prometheus.Counter
	tasksProcessed      *prometheus.CounterVec
	taskProcessDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webstack_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "status_class"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webstack_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	collaboratorErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webstack_collaborator_errors_total",
		Help: "Total failed calls to the counter store, relational store or task queue",
	}, []string{"collaborator", "category"})

	tasksEnqueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webstack_tasks_enqueued_total",
		Help: "Total tasks submitted to the queue",
	})

	tasksProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webstack_tasks_processed_total",
		Help: "Total tasks processed by the worker",
	}, []string{"type", "result"})

	taskProcessDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "webstack_task_process_duration_seconds",
		Help:    "Worker task handler duration",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(requests, requestDuration, collaboratorErrors, tasksEnqueued, tasksProcessed, taskProcessDuration)

	return &Metrics{
		registry:            registry,
		requests:            requests,
		requestDuration:     requestDuration,
		collaboratorErrors:  collaboratorErrors,
		tasksEnqueued:       tasksEnqueued,
		tasksProcessed:      tasksProcessed,
		taskProcessDuration: taskProcessDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	if route == "" {
		route = unmatchedRoute
	}
	m.requests.WithLabelValues(route, statusClass(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordCollaboratorError(collaborator string, category string) {
	if m == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	if category == "" {
		category = "unknown"
	}
	m.collaboratorErrors.WithLabelValues(collaborator, category).Inc()
}

func (m *Metrics) RecordTaskEnqueued() {
	if m == nil {
		return
	}
	m.tasksEnqueued.Inc()
}

func (m *Metrics) ObserveTaskProcessed(taskType string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	result := "success"
	if err != nil {
		result = "failure"
	}
	m.tasksProcessed.WithLabelValues(taskType, result).Inc()
	m.taskProcessDuration.Observe(duration.Seconds())
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}
