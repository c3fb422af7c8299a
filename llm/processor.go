package llm

import (
	"context"
	"log/slog"

	"github.com/dan-ince-aai/pipecheetah"
	"github.com/dan-ince-aai/pipecheetah/frame"
)

// Processor turns final transcripts into assistant replies. On session
// start it asks the model to greet the caller.
type Processor struct {
	client  *Client
	logger  *slog.Logger
	greeted bool
}

func NewProcessor(client *Client) *Processor {
	return &Processor{
		client: client,
		logger: slog.Default().With(slog.String("component", "llm")),
	}
}

func (p *Processor) Name() string {
	return "llm"
}

func (p *Processor) Process(ctx context.Context, f frame.Frame, push pipecheetah.PushFunc) error {
	switch f := f.(type) {
	case *frame.Start:
		if err := push(ctx, f); err != nil {
			return err
		}
		// a late start control message must not trigger a second greeting
		if p.greeted {
			return nil
		}
		p.greeted = true
		p.client.AppendSystem("Please introduce yourself to the user.")
		reply, err := p.client.Complete(ctx, "")
		if err != nil {
			p.logger.Error("greeting failed", slog.Any("err", err))
			return nil
		}
		return push(ctx, &frame.Text{Text: reply})

	case *frame.Transcript:
		if !f.Final || f.Text == "" {
			return nil
		}
		reply, err := p.client.Complete(ctx, f.Text)
		if err != nil {
			p.logger.Error("completion failed", slog.Any("err", err))
			return nil
		}
		return push(ctx, &frame.Text{Text: reply})
	}

	return push(ctx, f)
}
