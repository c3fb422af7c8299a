package pipecheetah

import (
	"context"

	"github.com/dan-ince-aai/pipecheetah/audio"
	"github.com/dan-ince-aai/pipecheetah/frame"
)

// AudioDataFunc is invoked synchronously with the full accumulated
// recording when the session ends.
type AudioDataFunc func(pcm []byte, sampleRate int)

// RecorderProcessor taps audio frames passing through the pipeline
// into a shared recorder. Place one instance where input audio flows
// and one where output audio flows; both may share a single Recorder.
type RecorderProcessor struct {
	name        string
	rec         *audio.Recorder
	onAudioData AudioDataFunc
}

func NewRecorderProcessor(name string, rec *audio.Recorder) *RecorderProcessor {
	return &RecorderProcessor{name: name, rec: rec}
}

// OnAudioData registers the end-of-session listener. Register it on
// exactly one of the instances sharing a recorder.
func (p *RecorderProcessor) OnAudioData(fn AudioDataFunc) *RecorderProcessor {
	p.onAudioData = fn
	return p
}

func (p *RecorderProcessor) Name() string {
	return p.name
}

func (p *RecorderProcessor) Process(ctx context.Context, f frame.Frame, push PushFunc) error {
	switch f := f.(type) {
	case *frame.AudioInput:
		p.rec.Append(f.PCM)
	case *frame.AudioOutput:
		p.rec.Append(f.PCM)
	case *frame.End:
		if p.onAudioData != nil && p.rec.Len() > 0 {
			p.onAudioData(p.rec.Bytes(), p.rec.SampleRate())
		}
	}
	return push(ctx, f)
}
