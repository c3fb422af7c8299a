// Package stt streams microphone audio to AssemblyAI's realtime
// transcription endpoint and surfaces transcripts.
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

const DefaultBaseURL = "wss://streaming.assemblyai.com/v3/ws"

type Config struct {
	APIKey     string
	BaseURL    string
	SampleRate int
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
}

// Transcript is one transcription result. Final marks the end of a
// spoken turn.
type Transcript struct {
	Text  string
	Final bool
}

// streamMessage covers the message types the streaming API sends.
type streamMessage struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	EndOfTurn  bool   `json:"end_of_turn,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Client is a realtime transcription session over WebSocket. Audio
// goes in as binary PCM frames; transcripts come out on a channel.
type Client struct {
	conn        *websocket.Conn
	transcripts chan Transcript
	closeOnce   sync.Once
	logger      *slog.Logger
}

// Connect dials the streaming endpoint and starts reading transcript
// messages. A missing or invalid API key is not validated locally; it
// surfaces as a dial or read error.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	cfg.defaults()

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("stt: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	q.Set("encoding", "pcm_s16le")
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("stt: dial: %w", err)
	}

	c := &Client{
		conn:        conn,
		transcripts: make(chan Transcript, 16),
		logger:      slog.Default().With(slog.String("component", "stt")),
	}

	go c.readLoop()

	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.transcripts)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("stt stream closed")
			} else {
				c.logger.Error("stt read failed", slog.Any("err", err))
			}
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("unparseable stt message", slog.Any("err", err))
			continue
		}

		switch msg.Type {
		case "Turn":
			if msg.Transcript == "" {
				continue
			}
			c.transcripts <- Transcript{Text: msg.Transcript, Final: msg.EndOfTurn}
		case "Termination":
			return
		case "Error":
			c.logger.Error("stt service error", slog.String("error", msg.Error))
		}
	}
}

// SendAudio forwards a chunk of PCM audio to the transcriber.
func (c *Client) SendAudio(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return fmt.Errorf("stt: send audio: %w", err)
	}
	return nil
}

// Transcripts delivers transcription results in arrival order. The
// channel closes when the stream ends.
func (c *Client) Transcripts() <-chan Transcript {
	return c.transcripts
}

// Close terminates the streaming session.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg, _ := json.Marshal(map[string]string{"type": "Terminate"})
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
		err = c.conn.Close()
	})
	return err
}
