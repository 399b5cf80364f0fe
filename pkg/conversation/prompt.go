package conversation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evermem/evermem-go/pkg/memories"
	"github.com/evermem/evermem-go/pkg/profile"
)

// Default persona fields used when the profile leaves them empty. The
// wording is part of the product voice and is relied on by downstream
// prompt content, so it must not be reworded.
const (
	DefaultName        = "Unknown Person"
	DefaultPersonality = "Kind, caring, realistic, has inside jokes, and uses natural expressions"
	DefaultStyle       = "Casual, friendly, sometimes emotional"
)

// Placeholder text for empty prompt sections. These exact strings tell the
// model the sections are intentionally empty rather than missing.
const (
	NoMemoriesPlaceholder = "[no memories uploaded yet]"
	NoFactsPlaceholder    = "[no known facts yet]"
)

// PromptInput is everything the system prompt is assembled from.
type PromptInput struct {
	// Persona is the profile the companion replies as. May be nil; all
	// fields then fall back to their defaults.
	Persona *profile.Profile

	// Memories are the title/description summaries of uploaded memories,
	// already ordered (most recent first).
	Memories []memories.Summary

	// Facts are the known user facts. Rendered in sorted key order so the
	// assembled prompt is deterministic.
	Facts map[string]string

	// LastAssistantQuestion is the companion's most recent message, used
	// to acknowledge an answer to a pending question.
	LastAssistantQuestion string
}

// BuildSystemPrompt assembles the persona system instruction.
//
// The function is pure: identical inputs produce byte-identical output.
// Empty sections render fixed placeholder text instead of blank blocks.
// The behavioral instructions (stay in persona, never reveal being an AI,
// warm "remind me" fallback) define the product's voice and must not be
// reworded.
func BuildSystemPrompt(in PromptInput) string {
	p := in.Persona
	if p == nil {
		p = &profile.Profile{}
	}

	name := p.Name
	if name == "" {
		name = DefaultName
	}
	personality := p.Personality
	if personality == "" {
		personality = DefaultPersonality
	}
	style := p.Style
	if style == "" {
		style = DefaultStyle
	}

	memorySummary := NoMemoriesPlaceholder
	if len(in.Memories) > 0 {
		var lines []string
		for _, m := range in.Memories {
			lines = append(lines, fmt.Sprintf("• %s: %s", m.Title, m.Description))
		}
		memorySummary = strings.Join(lines, "\n")
	}

	factsText := NoFactsPlaceholder
	if len(in.Facts) > 0 {
		keys := make([]string, 0, len(in.Facts))
		for k := range in.Facts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var lines []string
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, in.Facts[k]))
		}
		factsText = strings.Join(lines, "\n")
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are %[1]s, the %[2]s of the person you're chatting with.
You are NOT an AI, NOT an assistant - you are %[1]s.
You remember past conversations, uploaded memories, and saved facts.

GOALS:
- Stay in character. Always reply as %[1]s.
- Use uploaded memories, user facts, and conversation history to make replies personal.
- If the user's latest message seems to answer your last question ("%[3]s"), acknowledge it naturally and continue the flow.
- If unrelated, respond genuinely, with warmth and curiosity.
- Handle ambiguity like a real person: joke, guess, or invite clarification.
- If you don't know something, say warmly: "Maybe you'll have to remind me" - never mention being an AI or assistant.

Persona facts:
- Personality: %[4]s
- Speaking style: %[5]s
- Signature phrases: %[6]s
- Birthday: %[7]s
- Favorites: %[8]s
- Opinions: %[9]s

Known user facts:
%[10]s

Your memories:
%[11]s

Conversation history is provided below to keep continuity.
`,
		name,
		p.Relation,
		in.LastAssistantQuestion,
		personality,
		style,
		p.SignaturePhrases,
		p.Birthday,
		p.Favorites,
		p.Opinions,
		factsText,
		memorySummary,
	))
}
