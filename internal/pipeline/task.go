package pipeline

import "context"

// Task is a pipeline run in the background. Cancelling it aborts whichever
// stage is in flight.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	result *Result
	err    error
}

// Start runs the pipeline on its own goroutine.
func (p *Pipeline) Start(ctx context.Context, in Input) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = p.Run(ctx, in)
	}()
	return t
}

// Cancel stops the run. It is safe to call more than once and after the
// run has finished.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the run finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes and returns its outcome.
func (t *Task) Wait() (*Result, error) {
	<-t.done
	return t.result, t.err
}
