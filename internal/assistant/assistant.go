// Package assistant wraps the OpenAI compatible completion API used by the
// kitchen and garden chat.
package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// SystemPrompt is sent ahead of every user message.
const SystemPrompt = `You are CookFeed's kitchen and garden helper. Answer questions about cooking, ` +
	`recipes, ingredient substitutions, food storage and growing herbs and vegetables at home. ` +
	`Keep answers short and practical, use plain language, and say so when you are unsure. ` +
	`Politely decline questions unrelated to food or gardening.`

// ErrEmptyReply is returned when the API answers without any text.
var ErrEmptyReply = errors.New("completion returned no choices")

// Completer sends one system prompt and one user message and returns the reply.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Config holds the completion endpoint settings.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements Completer with go-openai.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{api: openai.NewClientWithConfig(oc), model: model}
}

// Complete makes a single request; retries are left to the caller.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
