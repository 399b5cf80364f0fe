// Package anthropic provides an Anthropic Claude implementation of the LLM provider.
//
// The Messages API keeps the system instruction separate from the
// user/assistant turns, so system messages are split out of the history
// before the request is built.
package anthropic

import (
	"context"
	"errors"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/evermem/evermem-go/pkg/llm"
)

// Client is an Anthropic LLM client.
// It implements the llm.Provider interface using the Anthropic Messages API.
type Client struct {
	client *anthropic.Client
	model  anthropic.Model
}

// Config is the configuration for Anthropic LLM.
// APIKey: Anthropic API key (required)
// Model: Model name to use, defaults to "claude-3-5-sonnet-20240620"
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a new Anthropic LLM client.
//
// Args:
//   - cfg: Anthropic configuration containing APIKey and Model
//
// Returns:
//   - *Client: Anthropic client instance
//   - error: Returns an error if the configuration is invalid
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}

	return &Client{
		client: anthropic.NewClient(cfg.APIKey),
		model:  anthropic.Model(model),
	}, nil
}

// Generate generates text based on the prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}
	return c.GenerateWithMessages(ctx, messages, opts...)
}

// GenerateWithMessages generates text using message history.
//
// System messages are concatenated into the request's System field; user and
// assistant messages are forwarded in order.
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - messages: Message history list, each message contains role and content
//   - opts: Optional generation parameters (temperature, max_tokens, top_p, etc.)
//
// Returns:
//   - string: Generated text content
//   - error: Returns an error if generation fails
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	var system string
	var turns []anthropic.Message
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += msg.Content
		case llm.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantTextMessage(msg.Content))
		default:
			turns = append(turns, anthropic.NewUserTextMessage(msg.Content))
		}
	}

	temperature := float32(options.Temperature)
	topP := float32(options.TopP)
	req := anthropic.MessagesRequest{
		Model:         c.model,
		System:        system,
		Messages:      turns,
		MaxTokens:     options.MaxTokens,
		Temperature:   &temperature,
		TopP:          &topP,
		StopSequences: options.Stop,
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", err
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", errors.New("llm generation failed: no content returned from Anthropic API")
	}

	return text, nil
}

// Close closes the client connection.
// The Anthropic SDK client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
