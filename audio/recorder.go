package audio

import "sync"

// Recorder accumulates a session's audio (input and output merged, in
// arrival order) for an optional post-session WAV dump. Everything is
// kept in memory, so it is a debug feature, not a call archive.
type Recorder struct {
	mu         sync.Mutex
	buf        []byte
	sampleRate int
}

func NewRecorder(sampleRate int) *Recorder {
	return &Recorder{sampleRate: sampleRate}
}

// Append adds PCM bytes to the recording.
func (r *Recorder) Append(pcm []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, pcm...)
}

// Bytes returns a copy of the accumulated audio.
func (r *Recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, len(r.buf))
	copy(out, r.buf)
	return out
}

// Len returns the number of accumulated bytes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// SampleRate returns the rate the recording is tagged with.
func (r *Recorder) SampleRate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sampleRate
}

// SetSampleRate retags the recording, used when the session negotiates
// a rate after the recorder was created.
func (r *Recorder) SetSampleRate(rate int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sampleRate = rate
}

// Reset discards all accumulated audio.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = nil
}
