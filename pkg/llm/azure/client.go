// Package azure provides an Azure OpenAI Service implementation of the LLM provider.
//
// Azure OpenAI exposes the same chat completion API as OpenAI but addresses
// models through per-resource deployments. The deployment name is used as the
// model identifier on every request.
package azure

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/evermem/evermem-go/pkg/llm"
)

// Client is an Azure OpenAI LLM client.
// It implements the llm.Provider interface on top of an Azure OpenAI deployment.
type Client struct {
	client     *openai.Client
	deployment string
}

// Config is the configuration for Azure OpenAI LLM.
// APIKey: Azure OpenAI resource key (required)
// Endpoint: Azure resource endpoint, e.g. "https://myresource.openai.azure.com" (required)
// Deployment: Deployment name of the chat model (required)
// APIVersion: Azure API version, defaults to the SDK default when empty
type Config struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
}

// NewClient creates a new Azure OpenAI LLM client.
//
// Args:
//   - cfg: Azure configuration containing APIKey, Endpoint, and Deployment
//
// Returns:
//   - *Client: Azure OpenAI client instance
//   - error: Returns an error if required configuration is missing
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("deployment name is required")
	}

	config := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		config.APIVersion = cfg.APIVersion
	}
	// Requests carry the deployment name in the model field.
	config.AzureModelMapperFunc = func(model string) string {
		return model
	}

	return &Client{
		client:     openai.NewClientWithConfig(config),
		deployment: cfg.Deployment,
	}, nil
}

// Generate generates text based on the prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}
	return c.GenerateWithMessages(ctx, messages, opts...)
}

// GenerateWithMessages generates text using message history against the
// configured Azure deployment.
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

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       c.deployment,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
		Stop:        options.Stop,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("llm generation failed: no choices returned from Azure OpenAI API")
	}

	return resp.Choices[0].Message.Content, nil
}

// Close closes the client connection.
// The OpenAI SDK client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
