// Package groq wraps the Groq chat completion API, which speaks the
// OpenAI wire protocol.
package groq

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the production chat model.
	DefaultModel = "llama-3.3-70b-versatile"

	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
)

// Client issues chat completions against Groq.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a Client. baseURL and model fall back to defaults when empty.
func New(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Complete sends one system and one user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
