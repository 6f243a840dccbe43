package obs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLogContainsRequiredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)

	LogAccess(logger, RequestContext{
		RequestID: "req-1",
		Method:    http.MethodPost,
		Path:      "/db",
		Route:     "POST /db",
		Status:    http.StatusOK,
		Duration:  12 * time.Millisecond,
		BytesIn:   17,
		BytesOut:  64,
	})

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload))
	for _, field := range []string{"request_id", "method", "path", "route", "status", "duration_ms", "bytes_in", "bytes_out", "time"} {
		assert.Contains(t, payload, field)
	}
	assert.Equal(t, "none", payload["error_category"])
	assert.Equal(t, "info", payload["level"])
}

func TestAccessLogWarnsOnServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)

	LogAccess(logger, RequestContext{Status: http.StatusServiceUnavailable, ErrorCategory: "unavailable"})
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestNewLoggerLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("loud", "json", &buf)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "invalid log level")

	debug := NewLogger("DEBUG", "json", &buf)
	assert.Equal(t, zerolog.DebugLevel, debug.GetLevel())
}

func TestMetricsCountRequestsByRoute(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveRequest("GET /health", http.StatusOK, time.Millisecond)
	metrics.ObserveRequest("GET /health", http.StatusOK, time.Millisecond)
	metrics.ObserveRequest("", http.StatusNotFound, time.Millisecond)
	metrics.RecordCollaboratorError("counter", "unavailable")
	metrics.RecordTaskEnqueued()
	metrics.ObserveTaskProcessed("add", nil, time.Millisecond)
	metrics.ObserveTaskProcessed("add", errors.New("boom"), time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues("GET /health", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues(unmatchedRoute, "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.collaboratorErrors.WithLabelValues("counter", "unavailable")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.tasksEnqueued))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.tasksProcessed.WithLabelValues("add", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.tasksProcessed.WithLabelValues("add", "failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.taskProcessDuration))
}

func TestMetricsHandlerServesExposition(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveRequest("GET /", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webstack_requests_total")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveRequest("GET /", http.StatusOK, time.Millisecond)
	metrics.RecordCollaboratorError("db", "unavailable")
	metrics.RecordTaskEnqueued()
	metrics.ObserveTaskProcessed("add", nil, 0)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSentryDisabledWithoutDSN(t *testing.T) {
	hub, err := InitSentry("", "test", "web")
	require.NoError(t, err)
	assert.Nil(t, hub)

	var buf bytes.Buffer
	CaptureError(hub, NewLogger("info", "json", &buf), errors.New("db down"), "insert visit", map[string]string{"route": "POST /db"})
	assert.Contains(t, buf.String(), "db down")
	assert.Contains(t, buf.String(), `"route":"POST /db"`)
	FlushSentry(hub, time.Millisecond)
}

func TestSentryRejectsMalformedDSN(t *testing.T) {
	_, err := InitSentry("not a dsn", "test", "web")
	assert.Error(t, err)
}
