// Package conversation implements the persona-grounded conversation engine:
// the rolling per-profile chat log, the system prompt assembler and the
// turn orchestrator that ties profiles, memories, facts and the LLM
// together.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/blobstore"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/profile"
)

// Turn is one message in a conversation log.
type Turn struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Source is the channel the turn originated from.
	Source string `json:"source"`
}

// Source tags for conversation turns.
const (
	// SourceChatbot marks turns from the text chat channel.
	SourceChatbot = "chatbot"

	// SourceVoiceAssistant marks turns from the voice channel.
	SourceVoiceAssistant = "voice_assistant"
)

// MaxTurns caps the persisted history length. When an append pushes the log
// past the cap, the oldest messages are dropped first; the newest are never
// discarded.
const MaxTurns = 200

// HistoryPath returns the blob path of a profile's conversation log.
func HistoryPath(profileID string) string {
	return profile.Root(profileID) + "conversations/history.json"
}

// Manager owns the read-modify-write cycle for per-profile conversation
// logs.
//
// The log is a single JSON document per profile; every append re-reads the
// document, mutates it and writes the whole thing back. Appends for the
// same profile are serialized with an in-process mutex, so a turn cannot be
// lost between two writers in this process. Writers in other processes
// still race with last-writer-wins semantics.
type Manager struct {
	blobs blobstore.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a conversation log manager over the given blob store.
func NewManager(blobs blobstore.Store) *Manager {
	return &Manager{
		blobs: blobs,
		locks: make(map[string]*sync.Mutex),
	}
}

// profileLock returns the append lock for a profile, creating it on first use.
func (m *Manager) profileLock(profileID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[profileID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[profileID] = l
	}
	return l
}

// Load returns a profile's conversation history in chronological order.
//
// Load never fails: an absent document is an empty history, and a document
// that cannot be decoded is discarded with a warning and also treated as
// empty. Store read errors degrade to empty history too. This keeps the
// conversational loop alive when storage is degraded, at the cost of losing
// continuity silently; write errors are NOT swallowed (see Append).
func (m *Manager) Load(ctx context.Context, profileID string) []Turn {
	data, err := m.blobs.Get(ctx, HistoryPath(profileID))
	if errors.Is(err, blobstore.ErrNotFound) {
		return []Turn{}
	}
	if err != nil {
		log.WithField("profile_id", profileID).Warnf("conversation history unavailable, continuing without it: %v", err)
		return []Turn{}
	}

	var history []Turn
	if err := json.Unmarshal(data, &history); err != nil {
		log.WithField("profile_id", profileID).Warnf("conversation history corrupt, discarding: %v", err)
		return []Turn{}
	}
	return history
}

// Append persists one user+assistant turn pair to a profile's log.
//
// Both turns are stamped with the given source tag, overwriting any
// caller-supplied value, and appended user first, assistant second. The
// pair is written in a single document overwrite, so readers never observe
// half a pair. When the log exceeds MaxTurns the oldest messages are
// truncated from the head before writing.
//
// Unlike reads, a failed write is returned to the caller: silently losing
// a saved turn would be worse than surfacing the failure.
func (m *Manager) Append(ctx context.Context, profileID string, userTurn, assistantTurn Turn, source string) error {
	l := m.profileLock(profileID)
	l.Lock()
	defer l.Unlock()

	history := m.Load(ctx, profileID)

	userTurn.Role = "user"
	userTurn.Source = source
	assistantTurn.Role = "assistant"
	assistantTurn.Source = source
	history = append(history, userTurn, assistantTurn)

	if len(history) > MaxTurns {
		history = history[len(history)-MaxTurns:]
	}

	doc, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return core.NewCompanionError("AppendTurn", err)
	}
	if err := m.blobs.Put(ctx, HistoryPath(profileID), doc); err != nil {
		return core.NewCompanionError("AppendTurn", err)
	}
	return nil
}

// Clear deletes a profile's conversation log. Clearing an absent log is
// not an error.
func (m *Manager) Clear(ctx context.Context, profileID string) error {
	l := m.profileLock(profileID)
	l.Lock()
	defer l.Unlock()

	if err := m.blobs.Delete(ctx, HistoryPath(profileID)); err != nil {
		return core.NewCompanionError("ClearConversation", err)
	}
	return nil
}

// LastAssistantMessage returns the content of the most recent assistant
// turn in history, or an empty string when there is none. The next turn
// uses it to acknowledge an unanswered question naturally.
func LastAssistantMessage(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i].Content
		}
	}
	return ""
}

// Window returns the most recent n messages of history. The window feeds
// the model; it is independent of MaxTurns, which bounds the persisted log.
func Window(history []Turn, n int) []Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
