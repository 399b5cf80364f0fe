package conversation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermem/evermem-go/pkg/conversation"
	"github.com/evermem/evermem-go/pkg/memories"
	"github.com/evermem/evermem-go/pkg/profile"
)

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	in := conversation.PromptInput{
		Persona: &profile.Profile{Name: "Asha", Relation: "Mother"},
		Memories: []memories.Summary{
			{Title: "Beach trip", Description: "Summer 2019 at the beach"},
		},
		Facts: map[string]string{
			"favorite_food": "dosa",
			"birthday":      "March 3rd",
			"allergy":       "peanuts",
		},
		LastAssistantQuestion: "How was school?",
	}

	first := conversation.BuildSystemPrompt(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, conversation.BuildSystemPrompt(in))
	}
}

func TestBuildSystemPrompt_FactsSorted(t *testing.T) {
	prompt := conversation.BuildSystemPrompt(conversation.PromptInput{
		Persona: &profile.Profile{Name: "Asha", Relation: "Mother"},
		Facts: map[string]string{
			"zebra": "z",
			"apple": "a",
			"mango": "m",
		},
	})

	apple := strings.Index(prompt, "apple: a")
	mango := strings.Index(prompt, "mango: m")
	zebra := strings.Index(prompt, "zebra: z")
	require.True(t, apple >= 0 && mango >= 0 && zebra >= 0)
	assert.Less(t, apple, mango)
	assert.Less(t, mango, zebra)
}

func TestBuildSystemPrompt_Placeholders(t *testing.T) {
	prompt := conversation.BuildSystemPrompt(conversation.PromptInput{
		Persona: &profile.Profile{Name: "Asha", Relation: "Mother"},
	})

	assert.Contains(t, prompt, conversation.NoMemoriesPlaceholder)
	assert.Contains(t, prompt, conversation.NoFactsPlaceholder)
}

func TestBuildSystemPrompt_Defaults(t *testing.T) {
	prompt := conversation.BuildSystemPrompt(conversation.PromptInput{})

	assert.Contains(t, prompt, conversation.DefaultName)
	assert.Contains(t, prompt, conversation.DefaultPersonality)
	assert.Contains(t, prompt, conversation.DefaultStyle)
}

func TestBuildSystemPrompt_MemoriesAsBullets(t *testing.T) {
	prompt := conversation.BuildSystemPrompt(conversation.PromptInput{
		Persona: &profile.Profile{Name: "Asha", Relation: "Mother"},
		Memories: []memories.Summary{
			{Title: "Beach trip", Description: "Summer 2019"},
			{Title: "Diwali", Description: "Sweets and sparklers"},
		},
	})

	assert.Contains(t, prompt, "• Beach trip: Summer 2019")
	assert.Contains(t, prompt, "• Diwali: Sweets and sparklers")
	assert.NotContains(t, prompt, conversation.NoMemoriesPlaceholder)
}

func TestBuildSystemPrompt_PersonaAndQuestion(t *testing.T) {
	prompt := conversation.BuildSystemPrompt(conversation.PromptInput{
		Persona: &profile.Profile{
			Name:        "Asha",
			Relation:    "Mother",
			Personality: "Warm and funny",
			Style:       "Casual",
		},
		LastAssistantQuestion: "How was school?",
	})

	assert.Contains(t, prompt, "You are Asha, the Mother")
	assert.Contains(t, prompt, "Warm and funny")
	assert.Contains(t, prompt, `("How was school?")`)
}
