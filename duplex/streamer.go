// Package duplex implements the client side audio streamer: live
// microphone chunks go out over a WebSocket while received audio is
// played back, with neither direction able to block the other.
package duplex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dan-ince-aai/pipecheetah/audio"
)

const defaultQueueCapacity = 100

// Conn is the subset of *websocket.Conn the streamer needs. Reads and
// writes happen from separate goroutines, never concurrently on the
// same direction.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Streamer pumps captured audio chunks to a connection and received
// audio to a playback sink.
//
// The capture callback runs on the audio subsystem's real-time thread
// and must return immediately, so it only does a non-blocking enqueue
// into a bounded queue; a dedicated sender goroutine drains the queue
// in FIFO order. The receive loop runs in Run's goroutine and writes
// inbound PCM to the playback sink in arrival order. The two
// directions are independent and unordered relative to each other.
type Streamer struct {
	conn     Conn
	playback io.Writer
	queue    *audio.ChunkQueue
	logger   *slog.Logger
}

type Option func(*options)

type options struct {
	queueCapacity int
	logger        *slog.Logger
}

// WithQueueCapacity bounds the outbound chunk queue.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		o.queueCapacity = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func New(conn Conn, playback io.Writer, opts ...Option) *Streamer {
	o := &options{
		queueCapacity: defaultQueueCapacity,
		logger:        slog.Default().With(slog.String("component", "duplex")),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Streamer{
		conn:     conn,
		playback: playback,
		queue:    audio.NewChunkQueue(o.queueCapacity),
		logger:   o.logger,
	}
}

// Capture hands a chunk of microphone audio to the streamer. It copies
// the chunk and returns immediately; when the queue is full the chunk
// is dropped. Safe to call from the audio device callback thread.
func (s *Streamer) Capture(p []byte) {
	if !s.queue.TryPush(p) {
		s.logger.Warn("capture queue overflow, chunk dropped", slog.Int("len", len(p)))
	}
}

// Dropped returns the number of capture chunks discarded so far.
func (s *Streamer) Dropped() uint64 {
	return s.queue.Dropped()
}

// Run drives both directions until the connection closes or ctx is
// cancelled. A clean remote closure ends the session with a nil error.
// On every exit path the sender goroutine is cancelled and awaited
// before Run returns; chunks still queued at that point are discarded.
func (s *Streamer) Run(ctx context.Context) error {
	senderCtx, cancelSender := context.WithCancel(context.Background())

	var (
		senderErr  error
		senderDone = make(chan struct{})
	)
	go func() {
		defer close(senderDone)
		senderErr = s.sendLoop(senderCtx)
	}()

	// Unblock ReadMessage when the caller cancels.
	unwatch := make(chan struct{})
	var watch sync.WaitGroup
	watch.Add(1)
	go func() {
		defer watch.Done()
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-unwatch:
		}
	}()

	recvErr := s.receiveLoop()

	cancelSender()
	<-senderDone
	close(unwatch)
	watch.Wait()

	// A send failure broke the connection; prefer reporting it over
	// the secondary read error.
	if senderErr != nil {
		return senderErr
	}
	if ctx.Err() != nil {
		return nil
	}
	return recvErr
}

// sendLoop transmits queued chunks one at a time, in the order they
// were accepted. A write failure terminates the session.
func (s *Streamer) sendLoop(ctx context.Context) error {
	for {
		data, err := s.queue.Pop(ctx)
		if err != nil {
			// cancellation during shutdown is not an error
			return nil
		}
		if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			s.logger.Error("send failed", slog.Any("err", err))
			_ = s.conn.Close()
			return err
		}
	}
}

// receiveLoop plays back inbound binary frames in arrival order until
// the connection closes.
func (s *Streamer) receiveLoop() error {
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			if isCleanClose(err) {
				s.logger.Debug("connection closed by server")
				return nil
			}
			return err
		}

		if mt != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		if _, err := s.playback.Write(data); err != nil {
			return err
		}
	}
}

func isCleanClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
