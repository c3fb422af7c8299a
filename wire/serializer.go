// Package wire translates between pipeline frames and the raw
// WebSocket wire format: binary frames are headerless little-endian
// int16 PCM, text frames carry the JSON start control message.
package wire

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/dan-ince-aai/pipecheetah/frame"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

// startMessage is the only control message of the protocol. It is sent
// by the client once, before or at session start.
type startMessage struct {
	Type              string `json:"type"`
	AudioInSampleRate int    `json:"audio_in_sample_rate"`
	AudioInChannels   int    `json:"audio_in_channels"`
}

// PCMSerializer converts wire payloads into frames and back. It holds
// the negotiated input sample rate and channel count used to tag
// inbound audio. Once negotiated, the parameters stay fixed for the
// session.
type PCMSerializer struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	ignored    atomic.Uint64
}

func NewPCMSerializer() *PCMSerializer {
	return &PCMSerializer{
		sampleRate: DefaultSampleRate,
		channels:   DefaultChannels,
	}
}

// Setup applies the pipeline's own configured input sample rate, which
// overrides whatever the serializer negotiated so far.
func (s *PCMSerializer) Setup(start *frame.Start) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start.AudioInSampleRate != 0 {
		s.sampleRate = start.AudioInSampleRate
	}
	if start.AudioInChannels != 0 {
		s.channels = start.AudioInChannels
	}
}

// SampleRate returns the currently negotiated input sample rate.
func (s *PCMSerializer) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// Channels returns the currently negotiated input channel count.
func (s *PCMSerializer) Channels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels
}

// Serialize returns the wire payload for a frame. Only audio destined
// for the client produces wire bytes: the raw PCM payload, unmodified,
// with no framing or header. All other frames yield nil.
func (s *PCMSerializer) Serialize(f frame.Frame) []byte {
	if out, ok := f.(*frame.AudioOutput); ok {
		return out.PCM
	}
	return nil
}

// Deserialize converts an inbound WebSocket message into a frame.
//
// Binary payloads become AudioInput tagged with the negotiated sample
// rate and channel count. A well-formed start control message updates
// the negotiated parameters and yields a Start frame. Malformed JSON
// and unknown control types are ignored: nil frame, parameters
// unchanged.
func (s *PCMSerializer) Deserialize(messageType int, data []byte) frame.Frame {
	switch messageType {
	case websocket.BinaryMessage:
		s.mu.Lock()
		defer s.mu.Unlock()
		return &frame.AudioInput{
			PCM:        data,
			SampleRate: s.sampleRate,
			Channels:   s.channels,
		}

	case websocket.TextMessage:
		var msg startMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.ignored.Add(1)
			return nil
		}
		if msg.Type != "start" {
			s.ignored.Add(1)
			return nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if msg.AudioInSampleRate != 0 {
			s.sampleRate = msg.AudioInSampleRate
		}
		if msg.AudioInChannels != 0 {
			s.channels = msg.AudioInChannels
		}
		return &frame.Start{
			AudioInSampleRate: s.sampleRate,
			AudioInChannels:   s.channels,
		}
	}

	return nil
}

// Ignored returns the number of control messages dropped as
// malformed or unknown.
func (s *PCMSerializer) Ignored() uint64 {
	return s.ignored.Load()
}

// EncodeStart renders the start control message a client sends to
// negotiate its input audio format.
func EncodeStart(sampleRate, channels int) ([]byte, error) {
	return json.Marshal(&startMessage{
		Type:              "start",
		AudioInSampleRate: sampleRate,
		AudioInChannels:   channels,
	})
}
