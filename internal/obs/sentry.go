package obs

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// InitSentry returns nil without error when dsn is empty; reporting is then
// disabled and CaptureError becomes a no-op.
func InitSentry(dsn string, release string, module string) (*sentry.Hub, error) {
	if dsn == "" {
		return nil, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          release,
	})
	if err != nil {
		return nil, err
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("module", module)
	})
	return hub, nil
}

// CaptureError logs err and forwards it to the hub when one is configured.
func CaptureError(hub *sentry.Hub, logger zerolog.Logger, err error, msg string, tags map[string]string) {
	if err == nil {
		return
	}
	event := logger.Error().Err(err)
	for k, v := range tags {
		event = event.Str(k, v)
	}
	event.Msg(msg)

	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("context", msg)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// FlushSentry waits up to timeout for queued events.
func FlushSentry(hub *sentry.Hub, timeout time.Duration) {
	if hub == nil {
		return
	}
	hub.Flush(timeout)
}
