package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: reply,
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestComplete(t *testing.T) {
	srv := newFakeAPI(t, "Hi there")
	defer srv.Close()

	c := New(Config{APIKey: "test", BaseURL: srv.URL})

	reply, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "Hi there", reply)

	history := c.History()
	require.Len(t, history, 3)
	require.Equal(t, openai.ChatMessageRoleSystem, history[0].Role)
	require.Equal(t, "hello", history[1].Content)
	require.Equal(t, "Hi there", history[2].Content)
}

func TestCompleteWithoutUserTurn(t *testing.T) {
	srv := newFakeAPI(t, "Hello, I am your teacher")
	defer srv.Close()

	c := New(Config{APIKey: "test", BaseURL: srv.URL})
	c.AppendSystem("Please introduce yourself to the user.")

	reply, err := c.Complete(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "Hello, I am your teacher", reply)

	// no user message was recorded
	history := c.History()
	require.Len(t, history, 3)
	require.Equal(t, openai.ChatMessageRoleSystem, history[1].Role)
	require.Equal(t, openai.ChatMessageRoleAssistant, history[2].Role)
}

func TestDefaults(t *testing.T) {
	cfg := Config{APIKey: "test"}
	cfg.defaults()
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, DefaultModel, cfg.Model)
	require.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
}
