package analysis

import (
	"context"
	"sync"
)

// Task is an analysis running in the background.
//
// Go Pattern: The goroutine owns the result until done is closed; after
// that Wait can read it without locking, since closing a channel is a
// happens-before edge for every receiver.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	outcome *Outcome
	err     error

	cancelOnce sync.Once
}

// Start launches Run in a goroutine and returns immediately.
// Cancelling ctx or calling Cancel stops the task at its next suspension
// point, the model call.
func (s *Service) Start(ctx context.Context, req Request) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel() // Release the derived context once the pipeline returns
		t.outcome, t.err = s.Run(ctx, req)
	}()

	return t
}

// Done is closed when the task has finished, successfully or not.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel asks the task to stop. Safe to call more than once.
func (t *Task) Cancel() {
	t.cancelOnce.Do(t.cancel)
}

// Wait blocks until the task finishes and returns its result.
func (t *Task) Wait() (*Outcome, error) {
	<-t.done
	return t.outcome, t.err
}
