// Package companion wires the EverMem building blocks into a single client:
// blob store, profiles, memories, conversation engine, and optional speech.
package companion

import (
	"context"

	"github.com/evermem/evermem-go/pkg/blobstore"
	fsStore "github.com/evermem/evermem-go/pkg/blobstore/fs"
	mysqlStore "github.com/evermem/evermem-go/pkg/blobstore/mysql"
	postgresStore "github.com/evermem/evermem-go/pkg/blobstore/postgres"
	redisStore "github.com/evermem/evermem-go/pkg/blobstore/redis"
	sqliteStore "github.com/evermem/evermem-go/pkg/blobstore/sqlite"
	"github.com/evermem/evermem-go/pkg/conversation"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/llm"
	anthropicLLM "github.com/evermem/evermem-go/pkg/llm/anthropic"
	azureLLM "github.com/evermem/evermem-go/pkg/llm/azure"
	openaiLLM "github.com/evermem/evermem-go/pkg/llm/openai"
	"github.com/evermem/evermem-go/pkg/memories"
	"github.com/evermem/evermem-go/pkg/profile"
	"github.com/evermem/evermem-go/pkg/speech"
	openaiSpeech "github.com/evermem/evermem-go/pkg/speech/openai"
)

// Client is the main EverMem client.
//
// It owns one blob store connection and exposes the stores and the
// conversation engine built on top of it. All state lives in the blob
// store, so multiple clients over the same backend see the same data.
//
// The client is safe for concurrent use.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := companion.NewClient(config)
//	defer client.Close()
//
//	reply, _ := client.Engine().Ask(ctx, "asha_mother", "hi mom", conversation.SourceChatbot)
type Client struct {
	config *core.Config

	blobs    blobstore.Store
	profiles *profile.Store
	index    *memories.Index
	logs     *conversation.Manager
	engine   *conversation.Engine

	llm      llm.Provider
	enricher *memories.Enricher
	searcher *memories.Searcher

	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
}

// NewClient creates a new EverMem client.
//
// The client is initialized with:
//   - Blob store (fs, SQLite, PostgreSQL, MySQL, or Redis)
//   - LLM provider (OpenAI, Azure OpenAI, or Anthropic)
//   - Speech provider (OpenAI, optional)
//
// Parameters:
//   - cfg: Configuration containing blob store, LLM, and speech settings
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *core.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	blobs, err := initBlobStore(cfg.Blob)
	if err != nil {
		return nil, err
	}

	llmProvider, err := initLLM(cfg.LLM)
	if err != nil {
		blobs.Close()
		return nil, err
	}

	client := &Client{
		config:   cfg,
		blobs:    blobs,
		llm:      llmProvider,
		profiles: profile.NewStore(blobs),
		logs:     conversation.NewManager(blobs),
	}
	client.index = memories.NewIndex(blobs)
	client.enricher = memories.NewEnricher(llmProvider)
	client.searcher = memories.NewSearcher(client.index, llmProvider)
	client.engine = conversation.NewEngine(client.profiles, client.index, client.logs, llmProvider)

	if cfg.Speech != nil {
		recognizer, synthesizer, err := initSpeech(cfg.Speech)
		if err != nil {
			client.Close()
			return nil, err
		}
		client.recognizer = recognizer
		client.synthesizer = synthesizer
	}

	return client, nil
}

// Blobs returns the underlying blob store.
func (c *Client) Blobs() blobstore.Store { return c.blobs }

// Profiles returns the profile store.
func (c *Client) Profiles() *profile.Store { return c.profiles }

// Memories returns the memory index.
func (c *Client) Memories() *memories.Index { return c.index }

// Enricher returns the memory enricher.
func (c *Client) Enricher() *memories.Enricher { return c.enricher }

// Searcher returns the LLM-backed memory searcher.
func (c *Client) Searcher() *memories.Searcher { return c.searcher }

// Logs returns the conversation log manager.
func (c *Client) Logs() *conversation.Manager { return c.logs }

// Engine returns the conversation engine.
func (c *Client) Engine() *conversation.Engine { return c.engine }

// LLM returns the configured LLM provider.
func (c *Client) LLM() llm.Provider { return c.llm }

// Recognizer returns the speech recognizer, or nil when speech is not
// configured.
func (c *Client) Recognizer() speech.Recognizer { return c.recognizer }

// Synthesizer returns the speech synthesizer, or nil when speech is not
// configured.
func (c *Client) Synthesizer() speech.Synthesizer { return c.synthesizer }

// VoiceEnabled reports whether speech support is configured.
func (c *Client) VoiceEnabled() bool {
	return c.recognizer != nil && c.synthesizer != nil
}

// Ping verifies that the blob store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.blobs.Exists(ctx, "profiles/.ping")
	return err
}

// Close releases all resources held by the client.
func (c *Client) Close() error {
	var firstErr error
	if c.recognizer != nil {
		if err := c.recognizer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.synthesizer != nil {
		if err := c.synthesizer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.llm != nil {
		if err := c.llm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.blobs != nil {
		if err := c.blobs.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// initBlobStore initializes the blob store backend.
func initBlobStore(cfg core.BlobConfig) (blobstore.Store, error) {
	switch cfg.Provider {
	case "fs":
		return fsStore.NewStore(&fsStore.Config{
			Root: stringOpt(cfg.Config, "root", "./data"),
		})
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    stringOpt(cfg.Config, "db_path", "./evermem.db"),
			TableName: stringOpt(cfg.Config, "table_name", "blobs"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:      stringOpt(cfg.Config, "host", "localhost"),
			Port:      intOpt(cfg.Config, "port", 5432),
			User:      stringOpt(cfg.Config, "user", "postgres"),
			Password:  stringOpt(cfg.Config, "password", ""),
			DBName:    stringOpt(cfg.Config, "db_name", "evermem"),
			TableName: stringOpt(cfg.Config, "table_name", "blobs"),
			SSLMode:   stringOpt(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:      stringOpt(cfg.Config, "host", "127.0.0.1"),
			Port:      intOpt(cfg.Config, "port", 3306),
			User:      stringOpt(cfg.Config, "user", "root"),
			Password:  stringOpt(cfg.Config, "password", ""),
			DBName:    stringOpt(cfg.Config, "db_name", "evermem"),
			TableName: stringOpt(cfg.Config, "table_name", "blobs"),
		})
	case "redis":
		return redisStore.NewClient(&redisStore.Config{
			Addr:      stringOpt(cfg.Config, "addr", "localhost:6379"),
			Password:  stringOpt(cfg.Config, "password", ""),
			DB:        intOpt(cfg.Config, "db", 0),
			KeyPrefix: stringOpt(cfg.Config, "key_prefix", ""),
		})
	default:
		return nil, core.NewCompanionError("initBlobStore", core.ErrInvalidConfig)
	}
}

// initLLM initializes the LLM provider.
func initLLM(cfg core.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "azure":
		return azureLLM.NewClient(&azureLLM.Config{
			APIKey:     cfg.APIKey,
			Endpoint:   cfg.BaseURL,
			Deployment: cfg.Model,
			APIVersion: cfg.APIVersion,
		})
	case "anthropic":
		return anthropicLLM.NewClient(&anthropicLLM.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
	default:
		return nil, core.NewCompanionError("initLLM", core.ErrInvalidConfig)
	}
}

// initSpeech initializes the speech provider.
func initSpeech(cfg *core.SpeechConfig) (speech.Recognizer, speech.Synthesizer, error) {
	switch cfg.Provider {
	case "openai":
		client, err := openaiSpeech.NewClient(&openaiSpeech.Config{
			APIKey: cfg.APIKey,
			Voice:  cfg.Voice,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	default:
		return nil, nil, core.NewCompanionError("initSpeech", core.ErrInvalidConfig)
	}
}

// stringOpt reads a string option from provider config with a default.
func stringOpt(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intOpt reads an int option from provider config with a default. JSON
// decoding produces float64 for numbers, so both forms are accepted.
func intOpt(m map[string]interface{}, key string, fallback int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
