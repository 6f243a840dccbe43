package api

import (
	"net/http"
	"time"

	"webstack/internal/obs"
)

// accessRecorder wraps the client writer and accumulates the access record
// of one request while handlers write through it.
type accessRecorder struct {
	writer      http.ResponseWriter
	start       time.Time
	wroteHeader bool
	record      obs.RequestContext
}

// categorySetter is satisfied by writers that carry an access record, so
// error paths can tag it without knowing the concrete writer.
type categorySetter interface {
	setErrorCategory(string)
}

func newAccessRecorder(w http.ResponseWriter, requestID string) *accessRecorder {
	return &accessRecorder{
		writer: w,
		start:  time.Now(),
		record: obs.RequestContext{RequestID: requestID, Status: http.StatusOK},
	}
}

func (a *accessRecorder) Header() http.Header {
	return a.writer.Header()
}

func (a *accessRecorder) WriteHeader(status int) {
	if !a.wroteHeader {
		a.record.Status = status
		a.wroteHeader = true
	}
	a.writer.WriteHeader(status)
}

func (a *accessRecorder) Write(data []byte) (int, error) {
	if !a.wroteHeader {
		a.WriteHeader(http.StatusOK)
	}
	n, err := a.writer.Write(data)
	a.record.BytesOut += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (a *accessRecorder) Unwrap() http.ResponseWriter {
	return a.writer
}

func (a *accessRecorder) setErrorCategory(category string) {
	a.record.ErrorCategory = category
}

// finish completes the record from the routed request. r.Pattern is only
// set once the mux has matched, so this runs after routing.
func (a *accessRecorder) finish(r *http.Request) obs.RequestContext {
	rec := a.record
	rec.Method = r.Method
	rec.Path = r.URL.Path
	rec.Route = r.Pattern
	rec.Duration = time.Since(a.start)
	rec.BytesIn = max(r.ContentLength, 0)
	rec.UserAgent = r.UserAgent()
	rec.RemoteAddr = r.RemoteAddr
	return rec
}
