package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/llm"
	"github.com/evermem/evermem-go/pkg/memories"
	"github.com/evermem/evermem-go/pkg/profile"
)

// HistoryWindow is the number of recent messages sent to the model as
// context. It is independent of MaxTurns, which bounds the persisted log.
const HistoryWindow = 10

// FarewellMessage is returned when the user asks to stop.
const FarewellMessage = "Goodbye for now."

// ApologyMessage is returned when the model call fails. The conversational
// path never surfaces transport errors to the person talking.
const ApologyMessage = "I'm sorry, I'm having a little trouble finding my words right now. Could you say that again in a moment?"

// exitPhrases end a session when contained in the normalized utterance.
// One canonical vocabulary is used for both the text and voice channels.
var exitPhrases = []string{"bye", "goodbye", "exit", "quit", "stop", "cancel"}

// IsExitPhrase reports whether the utterance asks to end the session.
// Matching is case-insensitive containment after trimming, so "ok stop now"
// ends the session just like "stop".
func IsExitPhrase(utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" {
		return false
	}
	for _, phrase := range exitPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// ErrEmptyUtterance indicates that the utterance was empty or whitespace
// only. No model call is made and nothing is persisted.
var ErrEmptyUtterance = fmt.Errorf("%w: empty utterance", core.ErrInvalidInput)

// Reply is the outcome of one orchestrated conversation turn.
type Reply struct {
	// Text is the assistant's reply.
	Text string

	// Ended reports that the utterance matched the exit vocabulary; Text
	// then holds the fixed farewell and nothing was persisted.
	Ended bool
}

// Engine orchestrates one conversation turn: fetch grounding state, build
// the system prompt, call the model, persist the pair, return the reply.
//
// The engine is stateless across requests; everything it needs is
// re-fetched from the blob store per turn.
type Engine struct {
	profiles *profile.Store
	index    *memories.Index
	logs     *Manager
	llm      llm.Provider

	// fetchTimeout bounds each grounding-state read (default 3s).
	fetchTimeout time.Duration

	// modelTimeout bounds the model call (default 30s).
	modelTimeout time.Duration

	// temperature is passed to every model call.
	temperature float64
}

// NewEngine creates a conversation engine over the given collaborators.
func NewEngine(profiles *profile.Store, index *memories.Index, logs *Manager, provider llm.Provider) *Engine {
	return &Engine{
		profiles:     profiles,
		index:        index,
		logs:         logs,
		llm:          provider,
		fetchTimeout: 3 * time.Second,
		modelTimeout: 30 * time.Second,
		temperature:  0.7,
	}
}

// Logs exposes the underlying conversation log manager.
func (e *Engine) Logs() *Manager {
	return e.logs
}

// Ask runs one conversation turn for a profile.
//
// The pipeline is strictly ordered: persistence happens only after a
// successful model response, so a failed model call never writes a turn.
// Two short-circuits come first:
//
//   - an empty or whitespace-only utterance returns ErrEmptyUtterance
//     without calling the model or writing anything;
//   - an utterance matching the exit vocabulary returns the fixed farewell
//     with Ended set, also without a model call or persistence.
//
// A model failure is recoverable: the caller gets the fixed apology text,
// not an error, and the log is left untouched.
//
// Parameters:
//   - ctx: Request-scoped context; cancellation aborts in-flight calls
//   - profileID: Profile whose persona and state ground the reply
//   - utterance: The user's new message
//   - source: Channel tag stamped on the persisted pair
//     (SourceChatbot or SourceVoiceAssistant)
//
// Returns the reply, or an error for invalid input and storage write
// failures.
func (e *Engine) Ask(ctx context.Context, profileID, utterance, source string) (*Reply, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, core.NewCompanionError("Ask", ErrEmptyUtterance)
	}
	if IsExitPhrase(utterance) {
		return &Reply{Text: FarewellMessage, Ended: true}, nil
	}

	// Fetch grounding state. A missing profile falls back to the default
	// persona; corrupt persona or fact documents are real errors.
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	persona, err := e.profiles.Get(fetchCtx, profileID)
	if err != nil && !errors.Is(err, core.ErrProfileNotFound) {
		return nil, err
	}

	summaries, err := e.index.Summaries(fetchCtx, profileID)
	if err != nil {
		return nil, err
	}

	facts, err := e.profiles.Facts(fetchCtx, profileID)
	if err != nil {
		return nil, err
	}

	history := Window(e.logs.Load(fetchCtx, profileID), HistoryWindow)
	lastQuestion := LastAssistantMessage(history)

	systemPrompt := BuildSystemPrompt(PromptInput{
		Persona:               persona,
		Memories:              summaries,
		Facts:                 facts,
		LastAssistantQuestion: lastQuestion,
	})

	// Only role and content go to the model; the source tag is a storage
	// concern.
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		msgs = append(msgs, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: utterance})

	modelCtx, cancelModel := context.WithTimeout(ctx, e.modelTimeout)
	defer cancelModel()

	replyText, err := e.llm.GenerateWithMessages(modelCtx, msgs, llm.WithTemperature(e.temperature))
	if err != nil {
		log.WithField("profile_id", profileID).Errorf("model call failed: %v", err)
		return &Reply{Text: ApologyMessage}, nil
	}
	replyText = strings.TrimSpace(replyText)

	err = e.logs.Append(ctx, profileID,
		Turn{Content: utterance},
		Turn{Content: replyText},
		source,
	)
	if err != nil {
		return nil, err
	}

	return &Reply{Text: replyText}, nil
}
