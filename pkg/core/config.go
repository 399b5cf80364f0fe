package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for an EverMem client.
//
// It includes settings for:
//   - Blob store (profile, memory, and conversation persistence)
//   - LLM provider (conversation, enrichment, and memory search)
//   - Speech provider (voice transcription and synthesis, optional)
//
// Example:
//
//	config := &core.Config{
//	    Blob: core.BlobConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./evermem.db",
//	        },
//	    },
//	    LLM: core.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "gpt-4o-mini",
//	    },
//	}
type Config struct {
	// Blob contains blob store configuration.
	Blob BlobConfig `json:"blob"`

	// LLM contains LLM provider configuration.
	LLM LLMConfig `json:"llm"`

	// Speech contains speech provider configuration (optional; voice
	// features are disabled when the provider is empty).
	Speech *SpeechConfig `json:"speech,omitempty"`

	// Server contains HTTP server configuration (optional).
	Server ServerConfig `json:"server"`
}

// BlobConfig contains configuration for the blob store.
//
// Supported providers: fs, sqlite, postgres, mysql, redis
//
// Example:
//
//	blobConfig := core.BlobConfig{
//	    Provider: "fs",
//	    Config: map[string]interface{}{
//	        "root": "./data",
//	    },
//	}
type BlobConfig struct {
	// Provider is the blob store provider name (fs, sqlite, postgres, mysql, redis).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For fs: root
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	// For Redis: addr, password, db, key_prefix
	Config map[string]interface{} `json:"config"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai, azure, anthropic
type LLMConfig struct {
	// Provider is the LLM provider name (openai, azure, anthropic).
	Provider string `json:"provider"`

	// APIKey is the API key for the LLM provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (for Azure, the deployment name).
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default
	// if empty). For Azure this is the resource endpoint and is required.
	BaseURL string `json:"base_url,omitempty"`

	// APIVersion is the Azure API version (optional, azure only).
	APIVersion string `json:"api_version,omitempty"`
}

// SpeechConfig contains configuration for the speech provider.
//
// Supported providers: openai (Whisper transcription and TTS synthesis).
type SpeechConfig struct {
	// Provider is the speech provider name (openai).
	Provider string `json:"provider"`

	// APIKey is the API key for the speech provider. Falls back to the
	// LLM API key when empty and the providers match.
	APIKey string `json:"api_key"`

	// Voice is the synthesis voice name (optional).
	Voice string `json:"voice,omitempty"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// Host is the listen address (default "0.0.0.0").
	Host string `json:"host"`

	// Port is the listen port (default 8000).
	Port int `json:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - BLOB_PROVIDER (fs, sqlite, postgres, mysql, redis)
//   - FS_ROOT
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, etc.
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_KEY_PREFIX
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL, AZURE_API_VERSION
//   - SPEECH_PROVIDER, SPEECH_API_KEY, SPEECH_VOICE
//   - SERVER_HOST, SERVER_PORT
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("BLOB_PROVIDER", "fs")

	blobConfig := make(map[string]interface{})

	switch provider {
	case "fs":
		blobConfig = map[string]interface{}{
			"root": getEnvOrDefault("FS_ROOT", "./data"),
		}
	case "sqlite":
		blobConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./evermem.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "blobs"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))

		blobConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       port,
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "evermem"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "blobs"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))

		blobConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "evermem"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "blobs"),
		}
	case "redis":
		db, _ := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))

		blobConfig = map[string]interface{}{
			"addr":       getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			"password":   os.Getenv("REDIS_PASSWORD"),
			"db":         db,
			"key_prefix": getEnvOrDefault("REDIS_KEY_PREFIX", "evermem:"),
		}
	}

	// Determine the LLM base URL and default model per provider.
	llmProvider := getEnvOrDefault("LLM_PROVIDER", "openai")
	var llmBaseURL string
	var defaultModel string

	switch llmProvider {
	case "azure":
		llmBaseURL = os.Getenv("AZURE_OPENAI_ENDPOINT")
		defaultModel = "gpt-4o-mini"
	case "anthropic":
		llmBaseURL = os.Getenv("ANTHROPIC_LLM_BASE_URL")
		defaultModel = "claude-3-5-sonnet-20240620"
	default:
		llmBaseURL = os.Getenv("LLM_BASE_URL")
		defaultModel = "gpt-4o-mini"
	}

	config := &Config{
		Blob: BlobConfig{
			Provider: provider,
			Config:   blobConfig,
		},
		LLM: LLMConfig{
			Provider:   llmProvider,
			APIKey:     os.Getenv("LLM_API_KEY"),
			Model:      getEnvOrDefault("LLM_MODEL", defaultModel),
			BaseURL:    llmBaseURL,
			APIVersion: os.Getenv("AZURE_API_VERSION"),
		},
		Server: ServerConfig{
			Host: getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port: mustAtoi(getEnvOrDefault("SERVER_PORT", "8000"), 8000),
		},
	}

	// Speech configuration (optional)
	if speechProvider := os.Getenv("SPEECH_PROVIDER"); speechProvider != "" {
		apiKey := os.Getenv("SPEECH_API_KEY")
		if apiKey == "" && speechProvider == "openai" {
			apiKey = config.LLM.APIKey
		}
		config.Speech = &SpeechConfig{
			Provider: speechProvider,
			APIKey:   apiKey,
			Voice:    os.Getenv("SPEECH_VOICE"),
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewCompanionError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewCompanionError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - Blob store provider must be specified
//   - LLM provider must be specified
//   - Azure requires an endpoint
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Blob.Provider == "" {
		return NewCompanionError("Validate", ErrInvalidConfig)
	}
	if c.LLM.Provider == "" {
		return NewCompanionError("Validate", ErrInvalidConfig)
	}
	if c.LLM.Provider == "azure" && c.LLM.BaseURL == "" {
		return NewCompanionError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// mustAtoi parses an integer, falling back to a default on bad input.
func mustAtoi(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
