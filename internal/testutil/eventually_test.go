package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollReturnsFirstSuccess(t *testing.T) {
	calls := 0
	got := Poll(t, time.Second, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return calls * 10, nil
	})
	assert.Equal(t, 30, got)
	assert.Equal(t, 3, calls)
}

func TestEventuallyStopsOnSuccess(t *testing.T) {
	deadline := time.Now().Add(20 * time.Millisecond)
	Eventually(t, time.Second, time.Millisecond, func() error {
		if time.Now().Before(deadline) {
			return errors.New("waiting")
		}
		return nil
	})
}

func TestFakeQueueCompletesSubmissions(t *testing.T) {
	q := NewFakeQueue(5 * time.Millisecond)
	id, err := q.EnqueueAdd(t.Context(), 2, 5)
	assert.NoError(t, err)
	q.Wait()

	res, err := q.Lookup(t.Context(), id)
	assert.NoError(t, err)
	if assert.NotNil(t, res.Value) {
		assert.Equal(t, int64(7), *res.Value)
	}
	assert.Len(t, q.Submissions(), 1)
}
