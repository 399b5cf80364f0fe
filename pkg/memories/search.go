package memories

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/llm"
)

// memoryIDPattern extracts quoted memory IDs from a model response that is
// not valid JSON.
var memoryIDPattern = regexp.MustCompile(`"(mem_[a-zA-Z0-9]+)"`)

// Searcher finds memories relevant to a free-text query by letting the
// model pick matching memory IDs from the rendered metadata list.
type Searcher struct {
	index *Index
	llm   llm.Provider
}

// NewSearcher creates a searcher over the given index and LLM provider.
func NewSearcher(index *Index, provider llm.Provider) *Searcher {
	return &Searcher{index: index, llm: provider}
}

// Search returns the stored memories the model judges relevant to query.
//
// The model is asked for a JSON list of memory IDs; when the response is
// not valid JSON the IDs are regex-extracted instead, matching the
// tolerant parsing the product has always used.
func (s *Searcher) Search(ctx context.Context, profileID, query string) ([]*Record, error) {
	records, err := s.index.List(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*Record{}, nil
	}

	var lines []string
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("ID: %s | Title: %s | Desc: %s", rec.MemoryID, rec.Title, rec.Description))
	}

	prompt := fmt.Sprintf(`You are a memory search assistant for %s. A user wants to search their memories.

Here are their saved memories:
%s

Based on the user query: "%s", return ONLY the memory_id values of the most relevant memories as a JSON list:
["mem_xxxxxxxx", "mem_yyyyyyyy"]`, profileID, strings.Join(lines, "\n"), query)

	response, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, core.NewCompanionError("SearchMemories", err)
	}

	ids := parseMemoryIDs(response)
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	matches := []*Record{}
	for _, rec := range records {
		if idSet[rec.MemoryID] {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// parseMemoryIDs decodes a JSON string list, falling back to regex
// extraction of mem_ tokens.
func parseMemoryIDs(response string) []string {
	response = stripCodeBlocks(response)

	var ids []string
	if err := json.Unmarshal([]byte(response), &ids); err == nil {
		return ids
	}

	for _, m := range memoryIDPattern.FindAllStringSubmatch(response, -1) {
		ids = append(ids, m[1])
	}
	return ids
}
