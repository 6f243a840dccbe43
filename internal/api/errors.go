package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"webstack/internal/obs"
)

const (
	categoryBadRequest  = "bad_request"
	categoryTooLarge    = "too_large"
	categoryUnavailable = "unavailable"
	categoryTimeout     = "timeout"
	categoryInternal    = "internal"
)

type ErrorBody struct {
	Status        int    `json:"status"`
	RequestID     string `json:"request_id"`
	ErrorCategory string `json:"error_category"`
	Message       string `json:"message"`
}

// ValidationError reports a request body the handler cannot use.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func WriteError(w http.ResponseWriter, requestID string, status int, category string, message string) {
	if setter, ok := w.(categorySetter); ok {
		setter.setErrorCategory(category)
	}
	w.Header().Set(RequestIDHeader, requestID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Status:        status,
		RequestID:     requestID,
		ErrorCategory: category,
		Message:       message,
	})
}

// badRequest answers 400 for validation failures and 413 for bodies over
// the configured limit.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	requestID, _ := RequestIDFromContext(r.Context())
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, requestID, http.StatusRequestEntityTooLarge, categoryTooLarge, "request body too large")
		return
	}
	WriteError(w, requestID, http.StatusBadRequest, categoryBadRequest, err.Error())
}

// collaboratorFailed maps an error from the counter store, relational store
// or task queue onto a 5xx. The attempt is not retried.
func (h *Handler) collaboratorFailed(w http.ResponseWriter, r *http.Request, collaborator string, err error) {
	requestID, _ := RequestIDFromContext(r.Context())
	status, category := http.StatusServiceUnavailable, categoryUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		status, category = http.StatusGatewayTimeout, categoryTimeout
	}
	h.metrics.RecordCollaboratorError(collaborator, category)
	obs.CaptureError(h.sentry, h.logger, err, collaborator+" call failed", map[string]string{
		"request_id":   requestID,
		"collaborator": collaborator,
		"route":        r.Pattern,
	})
	WriteError(w, requestID, status, category, collaborator+" unavailable")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
