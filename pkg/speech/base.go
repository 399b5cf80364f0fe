// Package speech provides interfaces for speech-to-text and text-to-speech providers.
//
// Recognition and synthesis are thin adapters over external services; the
// voice channel composes them around the conversation engine.
package speech

import (
	"context"
	"io"
)

// Recognizer converts a bounded audio clip into text.
type Recognizer interface {
	// Recognize transcribes the audio read from r.
	//
	// filename carries the original name so the provider can infer the
	// container format (e.g. "clip.wav"). An empty transcript with a nil
	// error means no speech was recognized; that outcome is distinct from
	// a transport failure.
	Recognize(ctx context.Context, r io.Reader, filename string) (string, error)

	// Close closes the provider and releases resources.
	Close() error
}

// Synthesizer converts text into spoken audio.
type Synthesizer interface {
	// Synthesize renders text as audio and returns the encoded bytes
	// together with the MIME content type (e.g. "audio/wav").
	Synthesize(ctx context.Context, text string) ([]byte, string, error)

	// Close closes the provider and releases resources.
	Close() error
}
