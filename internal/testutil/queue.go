package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"webstack/internal/tasks"
)

// Submission is one add task accepted by a FakeQueue.
type Submission struct {
	ID   string
	X, Y int64
}

// FakeQueue is an in-memory task queue with a built-in worker. Each
// submission stays PENDING for Delay and then succeeds with x+y.
type FakeQueue struct {
	Delay time.Duration

	mu          sync.Mutex
	submissions []Submission
	results     map[string]tasks.Result
	enqueueErr  error
	lookupErr   error
	wg          sync.WaitGroup
}

func NewFakeQueue(delay time.Duration) *FakeQueue {
	return &FakeQueue{Delay: delay, results: map[string]tasks.Result{}}
}

func (q *FakeQueue) FailEnqueue(err error) {
	q.mu.Lock()
	q.enqueueErr = err
	q.mu.Unlock()
}

func (q *FakeQueue) FailLookup(err error) {
	q.mu.Lock()
	q.lookupErr = err
	q.mu.Unlock()
}

// SetResult overrides the state reported for id.
func (q *FakeQueue) SetResult(result tasks.Result) {
	q.mu.Lock()
	q.results[result.ID] = result
	q.mu.Unlock()
}

func (q *FakeQueue) EnqueueAdd(ctx context.Context, x, y int64) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return "", q.enqueueErr
	}
	id := uuid.NewString()
	q.submissions = append(q.submissions, Submission{ID: id, X: x, Y: y})
	q.results[id] = tasks.Result{ID: id, State: tasks.StatePending}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		time.Sleep(q.Delay)
		sum := x + y
		q.SetResult(tasks.Result{ID: id, State: tasks.StateSuccess, Value: &sum})
	}()
	return id, nil
}

func (q *FakeQueue) Lookup(ctx context.Context, id string) (tasks.Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lookupErr != nil {
		return tasks.Result{}, q.lookupErr
	}
	if result, ok := q.results[id]; ok {
		return result, nil
	}
	return tasks.Result{ID: id, State: tasks.StatePending}, nil
}

func (q *FakeQueue) Submissions() []Submission {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Submission(nil), q.submissions...)
}

// Wait blocks until every simulated worker run has finished.
func (q *FakeQueue) Wait() {
	q.wg.Wait()
}
