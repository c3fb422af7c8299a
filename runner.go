package pipecheetah

import (
	"context"
	"log/slog"

	"github.com/dan-ince-aai/pipecheetah/frame"
)

// Runner drives a task: it opens the pipeline with a Start frame,
// feeds queued frames through in order, and closes with an End frame
// on every exit path so processors can flush.
type Runner struct {
	logger *slog.Logger
}

func NewRunner() *Runner {
	return &Runner{
		logger: slog.Default().With(slog.String("component", "runner")),
	}
}

func (r *Runner) Run(ctx context.Context, t *Task) error {
	logger := r.logger.With(slog.String("task_id", t.id))
	logger.Debug("task started")

	defer close(t.done)

	start := &frame.Start{
		AudioInSampleRate:  t.params.AudioInSampleRate,
		AudioOutSampleRate: t.params.AudioOutSampleRate,
	}
	if err := t.pipeline.Push(ctx, start); err != nil {
		logger.Error("start frame failed", slog.Any("err", err))
		return err
	}

	defer func() {
		// end-of-session flush must run even on cancellation
		if err := t.pipeline.Push(context.WithoutCancel(ctx), &frame.End{}); err != nil {
			logger.Error("end frame failed", slog.Any("err", err))
		}
		logger.Debug("task finished")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.cancel:
			return nil
		case f := <-t.frames:
			if _, ok := f.(*frame.End); ok {
				return nil
			}
			if err := t.pipeline.Push(ctx, f); err != nil {
				logger.Error("pipeline push failed", slog.Any("err", err))
				return err
			}
		}
	}
}
