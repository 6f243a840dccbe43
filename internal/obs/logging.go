package obs

import (
	"github.com/rs/zerolog"
)

// LogAccess writes one structured line per request.
func LogAccess(logger zerolog.Logger, ctx RequestContext) {
	event := logger.Info()
	if ctx.Status >= 500 {
		event = logger.Warn()
	}
	event.
		Str("kind", "access").
		Str("request_id", defaultString(ctx.RequestID, "none")).
		Str("method", ctx.Method).
		Str("path", ctx.Path).
		Str("route", defaultString(ctx.Route, "none")).
		Int("status", ctx.Status).
		Int64("duration_ms", ctx.Duration.Milliseconds()).
		Int64("bytes_in", ctx.BytesIn).
		Int64("bytes_out", ctx.BytesOut).
		Str("error_category", defaultString(ctx.ErrorCategory, "none")).
		Str("user_agent", ctx.UserAgent).
		Str("remote_addr", ctx.RemoteAddr).
		Send()
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
