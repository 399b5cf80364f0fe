// Package voice runs spoken conversation sessions: audio in, audio out,
// with the conversation engine in between.
package voice

import (
	"context"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/conversation"
	"github.com/evermem/evermem-go/pkg/speech"
)

// Spoken filler used around the engine's replies. These strings are part
// of the product voice and must not be reworded.
const (
	// NoSpeechPrompt is spoken when the recognizer hears nothing.
	NoSpeechPrompt = "I didn't catch that. Could you say it again?"

	// FollowUpQuestion is spoken after each reply to keep the session
	// going. It is spoken, not persisted, so the stored log holds only
	// the real exchange.
	FollowUpQuestion = "Is there anything else you'd like to talk about?"
)

// negativeReplies end the session when the user's answer to the follow-up
// question contains one of them.
var negativeReplies = []string{
	"nope", "nothing", "not really", "that's all", "that is all", "i'm good", "im good",
}

// isNegative reports whether an utterance declines the follow-up question.
// A bare "no" (possibly with trailing words) counts; so does any of the
// longer negative phrases anywhere in the utterance.
func isNegative(utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	normalized = strings.Trim(normalized, ".!,")
	if normalized == "no" || strings.HasPrefix(normalized, "no ") || strings.HasPrefix(normalized, "no,") {
		return true
	}
	for _, phrase := range negativeReplies {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// Exchange is the outcome of one audio round trip.
type Exchange struct {
	// Transcript is what the recognizer heard. Empty when no speech was
	// detected.
	Transcript string `json:"transcript"`

	// ReplyText is the spoken reply as text.
	ReplyText string `json:"reply_text"`

	// Audio is the synthesized reply. Nil when synthesis failed; the
	// caller still has ReplyText to fall back on.
	Audio []byte `json:"-"`

	// ContentType is the MIME type of Audio, e.g. "audio/wav".
	ContentType string `json:"content_type,omitempty"`

	// Ended reports that the session is over and no further audio should
	// be sent.
	Ended bool `json:"ended"`
}

// Session drives a spoken conversation for one profile.
//
// A session is a thin state machine over the engine: it transcribes audio,
// asks the engine, synthesizes the reply, and tracks whether the last
// thing it spoke was the follow-up question. A negative answer to the
// follow-up ends the session; anything else is treated as a new utterance.
//
// Sessions are not safe for concurrent use; one session serves one caller.
type Session struct {
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	engine      *conversation.Engine
	profileID   string

	awaitingFollowUp bool
}

// NewSession creates a voice session for the given profile.
func NewSession(recognizer speech.Recognizer, synthesizer speech.Synthesizer, engine *conversation.Engine, profileID string) *Session {
	return &Session{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		engine:      engine,
		profileID:   profileID,
	}
}

// HandleAudio runs one audio round trip.
//
// The audio is transcribed, routed through the conversation engine with
// the voice source tag, and the reply is synthesized back to audio. When
// the recognizer hears nothing the reply is a fixed re-prompt and the
// engine is not involved. Recognition errors are returned; synthesis
// errors are logged and the exchange is returned text-only.
//
// Parameters:
//   - ctx: Request-scoped context
//   - audio: The recorded utterance
//   - filename: Original filename, used to hint the audio format
//
// Returns the exchange, or an error when recognition or the engine fails.
func (s *Session) HandleAudio(ctx context.Context, audio io.Reader, filename string) (*Exchange, error) {
	transcript, err := s.recognizer.Recognize(ctx, audio, filename)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return s.speak(ctx, &Exchange{ReplyText: NoSpeechPrompt})
	}
	return s.HandleUtterance(ctx, transcript)
}

// HandleUtterance runs one round trip from already-transcribed text.
func (s *Session) HandleUtterance(ctx context.Context, transcript string) (*Exchange, error) {
	if s.awaitingFollowUp && isNegative(transcript) {
		s.awaitingFollowUp = false
		return s.speak(ctx, &Exchange{
			Transcript: transcript,
			ReplyText:  conversation.FarewellMessage,
			Ended:      true,
		})
	}
	s.awaitingFollowUp = false

	reply, err := s.engine.Ask(ctx, s.profileID, transcript, conversation.SourceVoiceAssistant)
	if err != nil {
		return nil, err
	}
	if reply.Ended {
		return s.speak(ctx, &Exchange{Transcript: transcript, ReplyText: reply.Text, Ended: true})
	}

	s.awaitingFollowUp = true
	return s.speak(ctx, &Exchange{
		Transcript: transcript,
		ReplyText:  reply.Text + " " + FollowUpQuestion,
	})
}

// speak synthesizes the reply text onto the exchange. Synthesis failure
// degrades to a text-only exchange rather than failing the round trip.
func (s *Session) speak(ctx context.Context, ex *Exchange) (*Exchange, error) {
	audio, contentType, err := s.synthesizer.Synthesize(ctx, ex.ReplyText)
	if err != nil {
		log.WithField("profile_id", s.profileID).Warnf("speech synthesis failed: %v", err)
		return ex, nil
	}
	ex.Audio = audio
	ex.ContentType = contentType
	return ex, nil
}
