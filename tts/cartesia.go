// Package tts synthesizes speech with Cartesia's streaming WebSocket
// API and yields raw PCM chunks.
package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/dan-ince-aai/pipecheetah/internal/idgen"
)

const (
	DefaultBaseURL = "wss://api.cartesia.ai/tts/websocket"
	DefaultModelID = "sonic-2"
	DefaultVoiceID = "5c9e800f-2a92-4720-969b-99c4ab8fbc87"

	apiVersion = "2024-11-13"
)

type Config struct {
	APIKey     string
	BaseURL    string
	ModelID    string
	VoiceID    string
	SampleRate int
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.VoiceID == "" {
		c.VoiceID = DefaultVoiceID
	}
	if c.SampleRate == 0 {
		c.SampleRate = 24000
	}
}

type synthesisRequest struct {
	ContextID    string       `json:"context_id"`
	ModelID      string       `json:"model_id"`
	Transcript   string       `json:"transcript"`
	Voice        voiceSpec    `json:"voice"`
	OutputFormat outputFormat `json:"output_format"`
	Language     string       `json:"language,omitempty"`
}

type voiceSpec struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type outputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type synthesisResponse struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client synthesizes text into 16-bit PCM at the configured sample
// rate. Each Synthesize call runs one streaming session.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		cfg:    cfg,
		logger: slog.Default().With(slog.String("component", "tts")),
	}
}

// SampleRate returns the PCM rate of synthesized audio.
func (c *Client) SampleRate() int {
	return c.cfg.SampleRate
}

// Synthesize streams synthesized audio for text, invoking emit for
// each PCM chunk in order. It returns once the service reports the
// synthesis done or on the first failure.
func (c *Client) Synthesize(ctx context.Context, text string, emit func(pcm []byte) error) error {
	if text == "" {
		return nil
	}

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("tts: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.cfg.APIKey)
	q.Set("cartesia_version", apiVersion)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("tts: dial: %w", err)
	}
	defer conn.Close()

	req := synthesisRequest{
		ContextID:  idgen.ID(),
		ModelID:    c.cfg.ModelID,
		Transcript: text,
		Voice:      voiceSpec{Mode: "id", ID: c.cfg.VoiceID},
		OutputFormat: outputFormat{
			Container:  "raw",
			Encoding:   "pcm_s16le",
			SampleRate: c.cfg.SampleRate,
		},
	}
	if err := conn.WriteJSON(&req); err != nil {
		return fmt.Errorf("tts: send request: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var resp synthesisResponse
		if err := conn.ReadJSON(&resp); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("tts: read: %w", err)
		}

		switch resp.Type {
		case "chunk":
			pcm, err := base64.StdEncoding.DecodeString(resp.Data)
			if err != nil {
				return fmt.Errorf("tts: decode chunk: %w", err)
			}
			if len(pcm) > 0 {
				if err := emit(pcm); err != nil {
					return err
				}
			}
			if resp.Done {
				return nil
			}
		case "done":
			return nil
		case "error":
			return fmt.Errorf("tts: service error: %s", resp.Error)
		default:
			c.logger.Debug("unhandled tts message", slog.String("type", resp.Type))
		}
	}
}
