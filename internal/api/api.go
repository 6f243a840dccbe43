// Package api is the HTTP surface: it routes each request to exactly one
// collaborator and serializes the outcome as JSON.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"webstack/internal/obs"
	"webstack/internal/runtime"
	"webstack/internal/tasks"
	"webstack/internal/visits"
)

// Counter increments named integers.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// VisitStore records and lists visits.
type VisitStore interface {
	Insert(ctx context.Context, note string) (visits.Visit, error)
	Recent(ctx context.Context, limit int) ([]visits.Visit, error)
}

// TaskQueue submits add tasks and answers state queries without blocking on
// the worker.
type TaskQueue interface {
	EnqueueAdd(ctx context.Context, x, y int64) (string, error)
	Lookup(ctx context.Context, id string) (tasks.Result, error)
}

type Config struct {
	Counter      Counter
	Visits       VisitStore
	Tasks        TaskQueue
	Metrics      *obs.Metrics
	Logger       zerolog.Logger
	Sentry       *sentry.Hub
	Inflight     *runtime.InflightTracker
	MaxBodyBytes int64
}

// Handler holds collaborator handles shared read-only by every request.
type Handler struct {
	counter      Counter
	visits       VisitStore
	tasks        TaskQueue
	metrics      *obs.Metrics
	logger       zerolog.Logger
	sentry       *sentry.Hub
	inflight     *runtime.InflightTracker
	maxBodyBytes int64
	mux          *http.ServeMux
}

func NewHandler(cfg Config) *Handler {
	h := &Handler{
		counter:      cfg.Counter,
		visits:       cfg.Visits,
		tasks:        cfg.Tasks,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		sentry:       cfg.Sentry,
		inflight:     cfg.Inflight,
		maxBodyBytes: cfg.MaxBodyBytes,
		mux:          http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("POST /db", h.handleWriteDB)
	h.mux.HandleFunc("GET /db", h.handleReadDB)
	h.mux.HandleFunc("POST /enqueue", h.handleEnqueue)
	h.mux.HandleFunc("GET /result/{task_id}", h.handleResult)
	if cfg.Metrics != nil {
		h.mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer h.inflight.Begin()()

	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = NewRequestID()
	}
	w.Header().Set(RequestIDHeader, requestID)

	rec := newAccessRecorder(w, requestID)
	r = r.WithContext(WithRequestID(r.Context(), requestID))
	if h.maxBodyBytes > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(rec, r.Body, h.maxBodyBytes)
	}

	h.route(rec, r)

	access := rec.finish(r)
	h.metrics.ObserveRequest(access.Route, access.Status, access.Duration)
	obs.LogAccess(h.logger, access)
}

// route runs the matched handler. A panic becomes a 500 with category
// internal when nothing has been written yet.
func (h *Handler) route(rec *accessRecorder, r *http.Request) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if p == http.ErrAbortHandler {
			panic(p)
		}
		requestID, _ := RequestIDFromContext(r.Context())
		obs.CaptureError(h.sentry, h.logger, fmt.Errorf("panic: %v", p), "handler panic", map[string]string{
			"request_id": requestID,
			"route":      r.Pattern,
		})
		if rec.wroteHeader {
			rec.setErrorCategory(categoryInternal)
			return
		}
		WriteError(rec, requestID, http.StatusInternalServerError, categoryInternal, "internal error")
	}()
	h.mux.ServeHTTP(rec, r)
}
