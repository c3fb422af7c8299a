// Package frame defines the frame variants that flow through a pipeline.
// Dispatch on frames is always a type switch on the concrete variant.
package frame

// Frame is the unit of data moving through a pipeline. Concrete
// variants carry audio, text or lifecycle signals.
type Frame interface {
	frame()
}

// Start signals the beginning of a session and carries the negotiated
// audio parameters.
type Start struct {
	AudioInSampleRate  int
	AudioInChannels    int
	AudioOutSampleRate int
}

// End signals the end of a session. Processors flush and release
// resources when they see it.
type End struct{}

// AudioInput is raw little-endian int16 PCM received from the client.
type AudioInput struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// AudioOutput is raw little-endian int16 PCM destined for the client.
type AudioOutput struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Transcript is a speech-to-text result for the user's audio.
type Transcript struct {
	Text  string
	Final bool
}

// Text is synthesizable assistant output produced by the language model.
type Text struct {
	Text string
}

func (*Start) frame()       {}
func (*End) frame()         {}
func (*AudioInput) frame()  {}
func (*AudioOutput) frame() {}
func (*Transcript) frame()  {}
func (*Text) frame()        {}
