package memories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/llm"
)

// Enrichment is AI-generated supplementary metadata for a memory.
type Enrichment struct {
	// Tags are suggested labels for the memory.
	Tags []string `json:"tags"`

	// Emotion is the suggested primary emotion.
	Emotion string `json:"emotion"`

	// Summary is a 1-2 sentence summary of the memory.
	Summary string `json:"summary"`
}

// Enricher generates tags, emotion and a summary for a memory using an LLM.
type Enricher struct {
	llm llm.Provider
}

// NewEnricher creates an enricher over the given LLM provider.
func NewEnricher(provider llm.Provider) *Enricher {
	return &Enricher{llm: provider}
}

// Enrich asks the model to derive tags, emotion and summary from a memory's
// title and description.
//
// Enrichment is best effort: any model or parsing failure degrades to an
// empty Enrichment with a warning log, so a flaky model never blocks an
// upload.
func (e *Enricher) Enrich(ctx context.Context, title, description string) Enrichment {
	prompt := fmt.Sprintf("Title: %s\nDescription: %s\n\n"+
		"Based on this, respond in the following JSON format:\n"+
		"{\n"+
		"  \"tags\": [list of relevant tags as strings],\n"+
		"  \"emotion\": \"primary emotion\",\n"+
		"  \"summary\": \"1-2 sentence summary of this memory\"\n"+
		"}", title, description)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a helpful memory analysis assistant."},
		{Role: llm.RoleUser, Content: prompt},
	}

	response, err := e.llm.GenerateWithMessages(ctx, messages)
	if err != nil {
		log.Warnf("memory enrichment failed: %v", err)
		return Enrichment{Tags: []string{}}
	}

	var enriched Enrichment
	if err := json.Unmarshal([]byte(stripCodeBlocks(response)), &enriched); err != nil {
		log.Warnf("memory enrichment returned unparseable JSON: %v", err)
		return Enrichment{Tags: []string{}}
	}
	if enriched.Tags == nil {
		enriched.Tags = []string{}
	}
	return enriched
}

// stripCodeBlocks removes ```json fences some models wrap around output.
func stripCodeBlocks(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
