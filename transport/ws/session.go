// Package ws carries voice sessions over WebSocket: headerless binary
// PCM frames in both directions plus a single JSON start control
// message from the client.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dan-ince-aai/pipecheetah/frame"
	"github.com/dan-ince-aai/pipecheetah/internal/idgen"
	"github.com/dan-ince-aai/pipecheetah/wire"
)

const (
	pingInterval    = 5 * time.Second
	framesBufferLen = 16
	controlDeadline = 1 * time.Second
)

// outMessage is one queued outbound write: binary audio, or the close
// frame that ends the session.
type outMessage struct {
	mt   int
	data []byte
}

// Session is one WebSocket connection carrying one conversational
// session. Inbound payloads are decoded by the wire codec and surfaced
// as frames; outbound frames are serialized and written by a single
// writer goroutine.
type Session struct {
	id        string
	conn      *websocket.Conn
	codec     *wire.PCMSerializer
	frames    chan frame.Frame
	msgOut    chan outMessage
	done      chan struct{} // closed when the read loop exits
	closeOnce sync.Once
	logger    *slog.Logger
}

func newSession(conn *websocket.Conn, logger *slog.Logger) *Session {
	id := idgen.ID()

	conn.SetPingHandler(func(message string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(1*time.Second))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Temporary() {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(string) error { return nil })

	return &Session{
		id:     id,
		conn:   conn,
		codec:  wire.NewPCMSerializer(),
		frames: make(chan frame.Frame, framesBufferLen),
		msgOut: make(chan outMessage, 1),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("session_id", id)),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Codec exposes the session's wire codec so the pipeline can apply its
// configured input sample rate and read the negotiated parameters.
func (s *Session) Codec() *wire.PCMSerializer {
	return s.codec
}

// Frames returns the inbound frame stream. The channel is closed when
// the connection ends.
func (s *Session) Frames() <-chan frame.Frame {
	return s.frames
}

// Closed is closed once the connection has ended, cleanly or not.
func (s *Session) Closed() <-chan struct{} {
	return s.done
}

// WriteFrame serializes a frame and queues it for transmission.
// Frames the codec has no wire representation for are dropped
// silently.
func (s *Session) WriteFrame(f frame.Frame) error {
	payload := s.codec.Serialize(f)
	if payload == nil {
		return nil
	}

	select {
	case <-s.done:
		return fmt.Errorf("session %s: connection closed", s.id)
	case s.msgOut <- outMessage{mt: websocket.BinaryMessage, data: payload}:
		return nil
	}
}

// Close performs a clean WebSocket closure and waits for the
// connection to wind down.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		select {
		case s.msgOut <- outMessage{
			mt:   websocket.CloseMessage,
			data: websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closed"),
		}:
		case <-s.done:
		}
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("close failed: %w", ctx.Err())
	case <-s.done:
		return nil
	}
}

// process pumps the connection until it ends. The read loop decodes
// inbound payloads into frames; the write loop owns all writes to the
// conn, including pings.
func (s *Session) process(ctx context.Context) {
	defer func() {
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("connection close", slog.Any("err", err))
		}
		s.logger.Debug("session processing done")
	}()

	go func() {
		defer close(s.done)
		defer close(s.frames)
		for {
			mt, data, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("connection closed by peer", slog.Any("err", err))
				} else {
					s.logger.Error("read failed", slog.Any("err", err))
				}
				return
			}

			f := s.codec.Deserialize(mt, data)
			if f == nil {
				continue
			}
			s.frames <- f
		}
	}()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return

		case <-ctx.Done():
			// Close would enqueue into msgOut, which this goroutine
			// drains; write the close frame directly instead.
			data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closed")
			if err := s.conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(controlDeadline)); err != nil {
				s.logger.Error("close failed", slog.Any("err", err))
			}
			return

		case <-pingTicker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(controlDeadline)); err != nil {
				s.logger.Error("ping failed", slog.Any("err", err))
				return
			}

		case msg := <-s.msgOut:
			if msg.mt == websocket.CloseMessage {
				if err := s.conn.WriteControl(msg.mt, msg.data, time.Now().Add(controlDeadline)); err != nil {
					s.logger.Error("write close failed", slog.Any("err", err))
					return
				}
			} else {
				if err := s.conn.WriteMessage(msg.mt, msg.data); err != nil {
					s.logger.Error("write failed", slog.Any("err", err))
					return
				}
			}
		}
	}
}
