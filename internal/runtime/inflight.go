package runtime

import (
	"context"
	"sync"
)

// InflightTracker counts requests being served so shutdown can wait for the
// count to reach zero.
type InflightTracker struct {
	mu    sync.Mutex
	count int64
	// idle is closed whenever count is zero.
	idle chan struct{}
}

func NewInflightTracker() *InflightTracker {
	idle := make(chan struct{})
	close(idle)
	return &InflightTracker{idle: idle}
}

// Begin marks one request in flight and returns the func that ends it.
// Calling the returned func more than once has no further effect.
func (t *InflightTracker) Begin() (end func()) {
	if t == nil {
		return func() {}
	}
	t.mu.Lock()
	if t.count == 0 {
		t.idle = make(chan struct{})
	}
	t.count++
	t.mu.Unlock()

	var once sync.Once
	return func() { once.Do(t.end) }
}

func (t *InflightTracker) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count--
	if t.count == 0 {
		close(t.idle)
	}
}

func (t *InflightTracker) Count() int64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Wait blocks until nothing is in flight or ctx ends.
func (t *InflightTracker) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
