package obs

import "time"

// RequestContext carries what the access log and metrics need to know about
// a finished request.
type RequestContext struct {
	RequestID     string
	Method        string
	Path          string
	Route         string
	Status        int
	Duration      time.Duration
	BytesIn       int64
	BytesOut      int64
	ErrorCategory string
	UserAgent     string
	RemoteAddr    string
}
