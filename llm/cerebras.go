// Package llm generates assistant replies with a Cerebras-hosted
// model through the OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.cerebras.ai/v1"
	DefaultModel   = "llama-4-scout-17b-16e-instruct"

	// The replies are rendered to audio, so the prompt keeps them
	// short and free of markup.
	DefaultSystemPrompt = "You are an elementary teacher in an audio call. " +
		"Your output will be converted to audio so don't include special characters in your answers. " +
		"Respond to what the student said in a short short sentence."
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
}

// Client keeps the role-tagged conversation history of one session and
// produces assistant turns. All methods are safe for concurrent use.
type Client struct {
	api      *openai.Client
	model    string
	mu       sync.Mutex
	messages []openai.ChatCompletionMessage
}

func New(cfg Config) *Client {
	cfg.defaults()

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: cfg.SystemPrompt},
		},
	}
}

// AppendSystem adds a system instruction to the conversation.
func (c *Client) AppendSystem(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: text,
	})
}

// Complete appends the user's turn (when non-empty), requests a
// completion over the full history and records the assistant's reply.
func (c *Client) Complete(ctx context.Context, userText string) (string, error) {
	c.mu.Lock()
	if userText != "" {
		c.messages = append(c.messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: userText,
		})
	}
	history := make([]openai.ChatCompletionMessage, len(c.messages))
	copy(history, c.messages)
	c.mu.Unlock()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: history,
	})
	if err != nil {
		return "", fmt.Errorf("llm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content

	c.mu.Lock()
	c.messages = append(c.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	c.mu.Unlock()

	return reply, nil
}

// History returns a copy of the conversation so far.
func (c *Client) History() []openai.ChatCompletionMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]openai.ChatCompletionMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
