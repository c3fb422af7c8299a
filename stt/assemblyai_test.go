package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestConnectAndTranscribe(t *testing.T) {
	upgrader := websocket.Upgrader{}

	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.Equal(t, "16000", r.URL.Query().Get("sample_rate"))
		require.Equal(t, "pcm_s16le", r.URL.Query().Get("encoding"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// first the audio, then emit a final transcript
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		received <- data

		require.NoError(t, conn.WriteJSON(map[string]any{
			"type":        "Turn",
			"transcript":  "hello world",
			"end_of_turn": true,
		}))
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "Termination"}))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Connect(ctx, Config{APIKey: "test-key", BaseURL: url, SampleRate: 16000})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SendAudio([]byte{0x01, 0x02, 0x03, 0x04}))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, <-received)

	tr := <-c.Transcripts()
	require.Equal(t, "hello world", tr.Text)
	require.True(t, tr.Final)

	// stream terminated, the channel closes
	_, ok := <-c.Transcripts()
	require.False(t, ok)
}

func TestSendAudioEmpty(t *testing.T) {
	c := &Client{}
	require.NoError(t, c.SendAudio(nil))
}
