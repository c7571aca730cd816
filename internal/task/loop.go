package task

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrLoopStopped is returned by Call once the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// DefaultQueueSize is the number of callbacks a Loop buffers.
const DefaultQueueSize = 64

// Dispatcher delivers callbacks to the goroutine that owns interaction state.
type Dispatcher interface {
	Post(fn func())
}

// Loop runs posted callbacks one at a time, in posting order, on the
// goroutine that calls Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a Loop buffering up to size callbacks.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run processes callbacks until ctx is cancelled. Callbacks still queued at
// that point are discarded.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

// invoke runs fn and keeps the loop alive if it panics.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event loop callback panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post queues fn. It blocks while the queue is full and drops fn once the
// loop has stopped. Do not call Post from inside a callback while the queue
// may be full.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.queue <- wrapped:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
