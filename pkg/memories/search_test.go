package memories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsStore "github.com/evermem/evermem-go/pkg/blobstore/fs"
	"github.com/evermem/evermem-go/pkg/llm"
	"github.com/evermem/evermem-go/pkg/memories"
)

// stubLLM returns a canned response for both generate entry points.
type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubLLM) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	for _, m := range messages {
		s.prompts = append(s.prompts, m.Content)
	}
	return s.response, s.err
}

func (s *stubLLM) Close() error { return nil }

func setupSearchTest(t *testing.T, model llm.Provider) (*memories.Index, *memories.Searcher, func()) {
	blobs, err := fsStore.NewStore(&fsStore.Config{Root: t.TempDir()})
	require.NoError(t, err)

	index := memories.NewIndex(blobs)
	searcher := memories.NewSearcher(index, model)
	cleanup := func() {
		_ = blobs.Close()
	}
	return index, searcher, cleanup
}

func TestSearcher_SearchJSONResponse(t *testing.T) {
	model := &stubLLM{}
	index, searcher, cleanup := setupSearchTest(t, model)
	defer cleanup()

	ctx := context.Background()

	beach, err := index.Upload(ctx, "asha_mother", "beach.jpg", []byte("x"), memories.Record{Title: "Beach trip"})
	require.NoError(t, err)
	_, err = index.Upload(ctx, "asha_mother", "diwali.jpg", []byte("x"), memories.Record{Title: "Diwali"})
	require.NoError(t, err)

	model.response = `["` + beach.MemoryID + `"]`

	results, err := searcher.Search(ctx, "asha_mother", "that day at the sea")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Beach trip", results[0].Title)

	// The rendered memory list reaches the model.
	require.NotEmpty(t, model.prompts)
	assert.Contains(t, model.prompts[0], "Title: Beach trip")
	assert.Contains(t, model.prompts[0], `"that day at the sea"`)
}

func TestSearcher_SearchRegexFallback(t *testing.T) {
	model := &stubLLM{}
	index, searcher, cleanup := setupSearchTest(t, model)
	defer cleanup()

	ctx := context.Background()

	beach, err := index.Upload(ctx, "asha_mother", "beach.jpg", []byte("x"), memories.Record{Title: "Beach trip"})
	require.NoError(t, err)

	// Chatty response that is not valid JSON.
	model.response = "Sure! The relevant memory is \"" + beach.MemoryID + "\" from your collection."

	results, err := searcher.Search(ctx, "asha_mother", "beach")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, beach.MemoryID, results[0].MemoryID)
}

func TestSearcher_SearchNoMemoriesSkipsModel(t *testing.T) {
	model := &stubLLM{response: "should not be asked"}
	_, searcher, cleanup := setupSearchTest(t, model)
	defer cleanup()

	results, err := searcher.Search(context.Background(), "asha_mother", "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, model.prompts)
}

func TestSearcher_SearchModelError(t *testing.T) {
	model := &stubLLM{err: errors.New("rate limited")}
	index, searcher, cleanup := setupSearchTest(t, model)
	defer cleanup()

	ctx := context.Background()
	_, err := index.Upload(ctx, "asha_mother", "a.jpg", []byte("x"), memories.Record{Title: "A"})
	require.NoError(t, err)

	_, err = searcher.Search(ctx, "asha_mother", "a")
	assert.Error(t, err)
}

func TestEnricher_Enrich(t *testing.T) {
	model := &stubLLM{response: "```json\n{\"tags\": [\"beach\", \"family\"], \"emotion\": \"joy\", \"summary\": \"A happy day.\"}\n```"}
	enricher := memories.NewEnricher(model)

	enriched := enricher.Enrich(context.Background(), "Beach trip", "Summer 2019")
	assert.Equal(t, []string{"beach", "family"}, enriched.Tags)
	assert.Equal(t, "joy", enriched.Emotion)
	assert.Equal(t, "A happy day.", enriched.Summary)
}

func TestEnricher_EnrichDegradesOnFailure(t *testing.T) {
	model := &stubLLM{err: errors.New("boom")}
	enricher := memories.NewEnricher(model)

	enriched := enricher.Enrich(context.Background(), "Beach trip", "Summer 2019")
	assert.Empty(t, enriched.Emotion)
	assert.Empty(t, enriched.Summary)
	assert.NotNil(t, enriched.Tags)

	model = &stubLLM{response: "not json at all"}
	enricher = memories.NewEnricher(model)
	enriched = enricher.Enrich(context.Background(), "Beach trip", "Summer 2019")
	assert.Empty(t, enriched.Summary)
}
