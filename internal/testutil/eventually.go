package testutil

import (
	"testing"
	"time"
)

// Poll calls fn every interval until it succeeds and returns its value. The
// test fails with the last error once timeout elapses.
func Poll[T any](t testing.TB, timeout, interval time.Duration, fn func() (T, error)) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		value, err := fn()
		if err == nil {
			return value
		}
		lastErr = err

		select {
		case <-timer.C:
			t.Fatalf("condition not met within %s: %v", timeout, lastErr)
			var zero T
			return zero
		case <-ticker.C:
		}
	}
}

// Eventually is Poll for conditions that produce no value.
func Eventually(t testing.TB, timeout, interval time.Duration, fn func() error) {
	t.Helper()
	Poll(t, timeout, interval, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}
