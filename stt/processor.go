package stt

import (
	"context"

	"github.com/dan-ince-aai/pipecheetah"
	"github.com/dan-ince-aai/pipecheetah/frame"
)

// Processor forwards inbound audio to the transcription stream. Audio
// frames are consumed here; transcripts re-enter the pipeline through
// the task queue, driven by the client's transcript channel.
type Processor struct {
	client *Client
}

func NewProcessor(client *Client) *Processor {
	return &Processor{client: client}
}

func (p *Processor) Name() string {
	return "stt"
}

func (p *Processor) Process(ctx context.Context, f frame.Frame, push pipecheetah.PushFunc) error {
	switch f := f.(type) {
	case *frame.AudioInput:
		return p.client.SendAudio(f.PCM)
	case *frame.End:
		_ = p.client.Close()
	}
	return push(ctx, f)
}
