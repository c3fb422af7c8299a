package pipecheetah

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dan-ince-aai/pipecheetah/frame"
	"github.com/dan-ince-aai/pipecheetah/internal/idgen"
)

// Params configures a pipeline task's audio format.
type Params struct {
	AudioInSampleRate  int
	AudioOutSampleRate int
}

// Task binds a pipeline to a frame queue and a cancellation signal.
// QueueFrame is the only way to inject frames from outside the
// runner's goroutine: producers running on other goroutines (network
// readers, service client callbacks) must hand off through it rather
// than touch the pipeline directly.
type Task struct {
	id         string
	pipeline   *Pipeline
	params     Params
	frames     chan frame.Frame
	cancelOnce sync.Once
	cancel     chan struct{}
	done       chan struct{}
	logger     *slog.Logger
}

func NewTask(p *Pipeline, params Params) *Task {
	id := idgen.ID()
	return &Task{
		id:       id,
		pipeline: p,
		params:   params,
		frames:   make(chan frame.Frame, 64),
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
		logger: slog.Default().With(
			slog.String("component", "task"),
			slog.String("id", id),
		),
	}
}

func (t *Task) ID() string {
	return t.id
}

// QueueFrame hands a frame to the task for processing. Safe to call
// from any goroutine. It fails once the task is cancelled or done.
func (t *Task) QueueFrame(ctx context.Context, f frame.Frame) error {
	select {
	case <-t.cancel:
		return fmt.Errorf("task %s: cancelled", t.id)
	case <-t.done:
		return fmt.Errorf("task %s: finished", t.id)
	case <-ctx.Done():
		return ctx.Err()
	case t.frames <- f:
		return nil
	}
}

// Cancel stops the task. Frames still queued are discarded.
func (t *Task) Cancel() {
	t.cancelOnce.Do(func() {
		close(t.cancel)
	})
}

// Done is closed when the runner has finished driving the task.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
