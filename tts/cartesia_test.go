package tts

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		require.Equal(t, apiVersion, r.URL.Query().Get("cartesia_version"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var req synthesisRequest
		require.NoError(t, conn.ReadJSON(&req))
		require.Equal(t, "hello", req.Transcript)
		require.Equal(t, "raw", req.OutputFormat.Container)
		require.Equal(t, "pcm_s16le", req.OutputFormat.Encoding)
		require.Equal(t, 24000, req.OutputFormat.SampleRate)
		require.NotEmpty(t, req.ContextID)

		for _, chunk := range []string{"aaaa", "bbbb"} {
			require.NoError(t, conn.WriteJSON(synthesisResponse{
				Type: "chunk",
				Data: base64.StdEncoding.EncodeToString([]byte(chunk)),
			}))
		}
		require.NoError(t, conn.WriteJSON(synthesisResponse{Type: "done"}))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := New(Config{APIKey: "test-key", BaseURL: url})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var chunks []string
	err := c.Synthesize(ctx, "hello", func(pcm []byte) error {
		chunks = append(chunks, string(pcm))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"aaaa", "bbbb"}, chunks)
}

func TestSynthesizeServiceError(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var req synthesisRequest
		require.NoError(t, conn.ReadJSON(&req))
		require.NoError(t, conn.WriteJSON(synthesisResponse{Type: "error", Error: "voice not found"}))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := New(Config{APIKey: "test-key", BaseURL: url})

	err := c.Synthesize(context.Background(), "hello", func([]byte) error { return nil })
	require.ErrorContains(t, err, "voice not found")
}

func TestSynthesizeEmptyText(t *testing.T) {
	c := New(Config{APIKey: "test-key"})
	require.NoError(t, c.Synthesize(context.Background(), "", func([]byte) error {
		t.Fatal("emit must not be called")
		return nil
	}))
}
