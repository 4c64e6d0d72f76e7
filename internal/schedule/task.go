// Package schedule runs repeating background work behind a cancellable handle.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is a handle on a repeating job. Cancel may be called any number of
// times from any goroutine; the job stops exactly once.
type Task struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Every runs fn each time interval elapses until fn returns false, ctx ends or
// the task is cancelled. The delay is measured from the end of the previous
// run, so runs never overlap. The first run happens after one interval.
func Every(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go t.run(ctx, interval, fn)
	return t
}

func (t *Task) run(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) {
	defer close(t.done)
	defer t.Cancel()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
		if !fn(ctx) || ctx.Err() != nil {
			return
		}
		timer.Reset(interval)
	}
}

// Cancel stops the task. A run in progress sees its context cancelled and no
// further run is started.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed once the task has stopped and its last run has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Stopped reports whether the task has finished.
func (t *Task) Stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
