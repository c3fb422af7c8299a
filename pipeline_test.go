package pipecheetah

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dan-ince-aai/pipecheetah/audio"
	"github.com/dan-ince-aai/pipecheetah/frame"
)

// collector records every frame reaching it, in order.
type collector struct {
	mu     sync.Mutex
	frames []frame.Frame
}

func (c *collector) Name() string { return "collector" }

func (c *collector) Process(ctx context.Context, f frame.Frame, push PushFunc) error {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
	return push(ctx, f)
}

func (c *collector) Frames() []frame.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]frame.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestPipelineOrder(t *testing.T) {
	tail := &collector{}
	p := NewPipeline(tail)

	ctx := context.Background()
	require.NoError(t, p.Push(ctx, &frame.Start{}))
	require.NoError(t, p.Push(ctx, &frame.AudioInput{PCM: []byte{1}}))
	require.NoError(t, p.Push(ctx, &frame.AudioInput{PCM: []byte{2}}))
	require.NoError(t, p.Push(ctx, &frame.End{}))

	frames := tail.Frames()
	require.Len(t, frames, 4)
	require.IsType(t, &frame.Start{}, frames[0])
	require.Equal(t, []byte{1}, frames[1].(*frame.AudioInput).PCM)
	require.Equal(t, []byte{2}, frames[2].(*frame.AudioInput).PCM)
	require.IsType(t, &frame.End{}, frames[3])
}

func TestPipelineConsume(t *testing.T) {
	// a processor that swallows audio input
	sink := &ProcessorFunc{
		ProcName: "sink",
		Fn: func(ctx context.Context, f frame.Frame, push PushFunc) error {
			if _, ok := f.(*frame.AudioInput); ok {
				return nil
			}
			return push(ctx, f)
		},
	}
	tail := &collector{}
	p := NewPipeline(sink, tail)

	ctx := context.Background()
	require.NoError(t, p.Push(ctx, &frame.AudioInput{PCM: []byte{1}}))
	require.NoError(t, p.Push(ctx, &frame.Text{Text: "hi"}))

	frames := tail.Frames()
	require.Len(t, frames, 1)
	require.IsType(t, &frame.Text{}, frames[0])
}

func TestRecorderProcessorMergesBothDirections(t *testing.T) {
	rec := audio.NewRecorder(16000)

	var (
		gotPCM  []byte
		gotRate int
		calls   int
	)
	head := NewRecorderProcessor("recorder_in", rec)
	// stands in for the STT→LLM→TTS stages: consumes input audio,
	// produces output audio
	echo := &ProcessorFunc{
		ProcName: "echo",
		Fn: func(ctx context.Context, f frame.Frame, push PushFunc) error {
			if _, ok := f.(*frame.AudioInput); ok {
				return push(ctx, &frame.AudioOutput{PCM: []byte("out"), SampleRate: 24000, Channels: 1})
			}
			return push(ctx, f)
		},
	}
	tail := NewRecorderProcessor("recorder_out", rec).OnAudioData(func(pcm []byte, sampleRate int) {
		gotPCM = pcm
		gotRate = sampleRate
		calls++
	})
	p := NewPipeline(head, echo, tail)

	ctx := context.Background()
	require.NoError(t, p.Push(ctx, &frame.AudioInput{PCM: []byte("in")}))
	require.NoError(t, p.Push(ctx, &frame.End{}))

	require.Equal(t, 1, calls)
	require.Equal(t, 16000, gotRate)
	require.Equal(t, "inout", string(gotPCM))
}

func TestRunnerLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	tail := &collector{}
	p := NewPipeline(tail)
	task := NewTask(p, Params{AudioInSampleRate: 16000, AudioOutSampleRate: 24000})

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- NewRunner().Run(ctx, task) }()

	require.NoError(t, task.QueueFrame(ctx, &frame.AudioInput{PCM: []byte{1}}))
	require.NoError(t, task.QueueFrame(ctx, &frame.Transcript{Text: "hello", Final: true}))

	require.Eventually(t, func() bool {
		return len(tail.Frames()) == 3
	}, time.Second, 5*time.Millisecond)

	task.Cancel()
	require.NoError(t, <-done)
	<-task.Done()

	frames := tail.Frames()
	require.IsType(t, &frame.Start{}, frames[0])
	require.IsType(t, &frame.End{}, frames[len(frames)-1])

	start := frames[0].(*frame.Start)
	require.Equal(t, 16000, start.AudioInSampleRate)
	require.Equal(t, 24000, start.AudioOutSampleRate)
}

func TestTaskQueueAfterCancel(t *testing.T) {
	task := NewTask(NewPipeline(), Params{})
	task.Cancel()

	err := task.QueueFrame(context.Background(), &frame.Text{Text: "late"})
	require.Error(t, err)
}

func TestSessionListenerNilSafe(t *testing.T) {
	var l SessionListener
	l.Connected("abc")
	l.Disconnected("abc")

	var called string
	l.OnClientConnected = func(sessionID string) { called = sessionID }
	l.Connected("xyz")
	require.Equal(t, "xyz", called)
}
