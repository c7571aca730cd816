package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/logging"
)

var taskSeq atomic.Uint64

// PanicError records a panic recovered from work. onFailure receives it
// wrapped in an unknown-kind core error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Handle identifies one launched task.
type Handle struct {
	ID   uint64
	Name string
	done chan struct{}
}

// Done is closed after the completion callback has run on the dispatcher.
// It never closes if the dispatcher drops the callback.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Run executes work on a new goroutine and posts exactly one of onSuccess or
// onFailure to d. A panic in work is recovered and reported as a
// core.UnknownError wrapping a *PanicError. Either callback may be nil.
//
// ctx is handed to work unchanged; Run never cancels it.
func Run[T any](ctx context.Context, d Dispatcher, name string, work func(context.Context) (T, error), onSuccess func(T), onFailure func(error)) *Handle {
	h := &Handle{
		ID:   taskSeq.Add(1),
		Name: name,
		done: make(chan struct{}),
	}
	logger := logging.ForTask(h.ID, name)

	go func() {
		start := time.Now()
		logger.Debug("task started")

		val, err := call(ctx, name, work)
		elapsed := time.Since(start)

		d.Post(func() {
			defer close(h.done)

			if err != nil {
				logger.Warn("task failed", "error", err, "duration_ms", elapsed.Milliseconds())
				if onFailure != nil {
					onFailure(err)
				}
				return
			}

			logger.Info("task succeeded", "duration_ms", elapsed.Milliseconds())
			if onSuccess != nil {
				onSuccess(val)
			}
		})
	}()

	return h
}

// call invokes work, converting a panic into an unknown error.
func call[T any](ctx context.Context, name string, work func(context.Context) (T, error)) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			val = zero
			err = core.UnknownError("task."+name, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()
	return work(ctx)
}
