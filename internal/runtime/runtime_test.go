package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstack/internal/config"
)

func TestInflightTrackerWaitsForZero(t *testing.T) {
	tracker := NewInflightTracker()
	require.NoError(t, tracker.Wait(context.Background()), "idle tracker should not block")

	endFirst := tracker.Begin()
	endSecond := tracker.Begin()
	assert.Equal(t, int64(2), tracker.Count())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tracker.Wait(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() {
		done <- tracker.Wait(context.Background())
	}()
	endFirst()
	endSecond()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after requests drained")
	}
	assert.Zero(t, tracker.Count())
}

func TestInflightEndIsIdempotent(t *testing.T) {
	tracker := NewInflightTracker()
	end := tracker.Begin()
	keep := tracker.Begin()

	end()
	end()
	assert.Equal(t, int64(1), tracker.Count(), "a repeated end must not release another request")

	keep()
	assert.Zero(t, tracker.Count())

	// The tracker can go busy again after draining.
	again := tracker.Begin()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, tracker.Wait(ctx))
	again()
	assert.NoError(t, tracker.Wait(context.Background()))
}

func TestNilInflightTracker(t *testing.T) {
	var tracker *InflightTracker
	tracker.Begin()()
	assert.Zero(t, tracker.Count())
	assert.NoError(t, tracker.Wait(context.Background()))
}

func TestShutdownFromConfig(t *testing.T) {
	got, err := ShutdownFromConfig(config.ShutdownConfig{DrainMS: 100, GracefulTimeoutMS: 300})
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, got.Drain)
	assert.Equal(t, 300*time.Millisecond, got.GracefulTimeout)
	assert.Equal(t, defaultForceClose, got.ForceClose)

	for _, bad := range []config.ShutdownConfig{
		{DrainMS: -1},
		{GracefulTimeoutMS: -1},
		{ForceCloseMS: -1},
	} {
		_, err := ShutdownFromConfig(bad)
		assert.Error(t, err, "%+v", bad)
	}
}

func TestApplyShutdownDefaultsKeepsZeroDrain(t *testing.T) {
	got := ApplyShutdownDefaults(ShutdownConfig{Drain: -time.Second})
	assert.Zero(t, got.Drain)
	assert.Equal(t, defaultGracefulTimeout, got.GracefulTimeout)
	assert.Equal(t, defaultForceClose, got.ForceClose)
}
