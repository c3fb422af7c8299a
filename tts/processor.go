package tts

import (
	"context"
	"log/slog"

	"github.com/dan-ince-aai/pipecheetah"
	"github.com/dan-ince-aai/pipecheetah/frame"
)

// Processor synthesizes assistant text into audio output frames.
type Processor struct {
	client *Client
	logger *slog.Logger
}

func NewProcessor(client *Client) *Processor {
	return &Processor{
		client: client,
		logger: slog.Default().With(slog.String("component", "tts")),
	}
}

func (p *Processor) Name() string {
	return "tts"
}

func (p *Processor) Process(ctx context.Context, f frame.Frame, push pipecheetah.PushFunc) error {
	t, ok := f.(*frame.Text)
	if !ok {
		return push(ctx, f)
	}

	err := p.client.Synthesize(ctx, t.Text, func(pcm []byte) error {
		return push(ctx, &frame.AudioOutput{
			PCM:        pcm,
			SampleRate: p.client.SampleRate(),
			Channels:   1,
		})
	})
	if err != nil {
		p.logger.Error("synthesis failed", slog.Any("err", err))
	}
	return nil
}
