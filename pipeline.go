// Package pipecheetah is a small frame pipeline for voice
// conversations: audio and text frames flow through an ordered chain
// of processors (speech-to-text, language model, speech synthesis,
// transport output).
package pipecheetah

import (
	"context"

	"github.com/dan-ince-aai/pipecheetah/frame"
)

// PushFunc forwards a frame to the next processor in the chain.
type PushFunc func(ctx context.Context, f frame.Frame) error

// Processor handles frames. A processor that does not care about a
// frame pushes it downstream unchanged; a processor that consumes a
// frame simply does not push it.
type Processor interface {
	Name() string
	Process(ctx context.Context, f frame.Frame, push PushFunc) error
}

// Pipeline is an ordered processor chain. Push walks the chain
// synchronously, so frame order is preserved end to end.
type Pipeline struct {
	procs []Processor
}

func NewPipeline(procs ...Processor) *Pipeline {
	return &Pipeline{procs: procs}
}

// Push feeds a frame into the head of the pipeline.
func (p *Pipeline) Push(ctx context.Context, f frame.Frame) error {
	return p.pushFrom(ctx, 0, f)
}

func (p *Pipeline) pushFrom(ctx context.Context, i int, f frame.Frame) error {
	if i >= len(p.procs) {
		return nil
	}
	next := func(ctx context.Context, out frame.Frame) error {
		return p.pushFrom(ctx, i+1, out)
	}
	return p.procs[i].Process(ctx, f, next)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc struct {
	ProcName string
	Fn       func(ctx context.Context, f frame.Frame, push PushFunc) error
}

func (p *ProcessorFunc) Name() string {
	return p.ProcName
}

func (p *ProcessorFunc) Process(ctx context.Context, f frame.Frame, push PushFunc) error {
	return p.Fn(ctx, f, push)
}
