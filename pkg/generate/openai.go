package generate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIChat implements Chat using the OpenAI chat completions API.
// Works with any OpenAI-compatible provider via WithBaseURL.
type OpenAIChat struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures an OpenAIChat.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// NewOpenAIChat creates a chat backend for the given model.
func NewOpenAIChat(apiKey, model string, opts ...OpenAIOption) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generate: missing OpenAI API key")
	}
	if model == "" {
		return nil, fmt.Errorf("generate: missing model name")
	}

	var cfg openAIConfig
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAIChat{client: &client, model: model}, nil
}

// Complete sends one system+user exchange and returns the assistant
// text.
func (c *OpenAIChat) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("generate: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate: chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Chat = (*OpenAIChat)(nil)
