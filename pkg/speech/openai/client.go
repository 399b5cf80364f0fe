// Package openai provides speech recognition and synthesis backed by the
// OpenAI audio APIs (Whisper transcription and the tts-1 voices).
package openai

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client implements speech.Recognizer and speech.Synthesizer using the
// OpenAI audio endpoints.
type Client struct {
	client          *openai.Client
	transcribeModel string
	speechModel     openai.SpeechModel
	voice           openai.SpeechVoice
}

// Config is the configuration for the OpenAI speech adapter.
// APIKey: OpenAI API key (required)
// BaseURL: API base URL, defaults to the OpenAI official address
// TranscribeModel: transcription model, defaults to "whisper-1"
// SpeechModel: synthesis model, defaults to "tts-1"
// Voice: synthesis voice, defaults to "alloy"
type Config struct {
	APIKey          string
	BaseURL         string
	TranscribeModel string
	SpeechModel     string
	Voice           string
}

// NewClient creates a new OpenAI speech client.
//
// Args:
//   - cfg: Configuration containing APIKey and optional model overrides
//
// Returns:
//   - *Client: OpenAI speech client instance
//   - error: Returns an error if the configuration is invalid
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = openai.Whisper1
	}
	speechModel := cfg.SpeechModel
	if speechModel == "" {
		speechModel = string(openai.TTSModel1)
	}
	voice := cfg.Voice
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	return &Client{
		client:          openai.NewClientWithConfig(config),
		transcribeModel: transcribeModel,
		speechModel:     openai.SpeechModel(speechModel),
		voice:           openai.SpeechVoice(voice),
	}, nil
}

// Recognize transcribes an audio clip with Whisper.
//
// Returns the recognized text, or an empty string when the clip contains
// no recognizable speech. Transport and API failures are returned as errors.
func (c *Client) Recognize(ctx context.Context, r io.Reader, filename string) (string, error) {
	if filename == "" {
		filename = "audio.wav"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		Reader:   r,
		FilePath: filename,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}

// Synthesize renders text as WAV audio with the configured voice.
//
// Returns the audio bytes and the content type "audio/wav".
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.speechModel,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, "", err
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, "", err
	}

	return audio, "audio/wav", nil
}

// Close closes the client connection.
// The OpenAI SDK client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
