package photomap

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopStopped is returned when work is posted to a loop that has exited.
var ErrLoopStopped = errors.New("photomap: event loop stopped")

// Loop runs posted functions one at a time on a single goroutine.
type Loop struct {
	tasks   chan func()
	stopped chan struct{}
	once    sync.Once
	work    sync.WaitGroup
}

// NewLoop returns a loop whose queue holds up to buffer functions.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks:   make(chan func(), buffer),
		stopped: make(chan struct{}),
	}
}

// Run executes posted functions until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.tasks:
			f()
		}
	}
}

// Post queues f. It reports false if the loop has stopped.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs f on the loop and waits for it. It must not be called from the
// loop goroutine.
func (l *Loop) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	if !l.Post(func() { defer close(done); f() }) {
		return ErrLoopStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	}
}

// Go implements Scheduler: work runs on its own goroutine and the closure it
// returns is posted back to the loop.
func (l *Loop) Go(work func() func()) {
	l.work.Add(1)
	go func() {
		defer l.work.Done()
		if complete := work(); complete != nil {
			l.Post(complete)
		}
	}()
}

// Wait blocks until every function started with Go has returned.
func (l *Loop) Wait() {
	l.work.Wait()
}
