package memories_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermem/evermem-go/pkg/blobstore"
	fsStore "github.com/evermem/evermem-go/pkg/blobstore/fs"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/memories"
)

func setupIndexTest(t *testing.T) (blobstore.Store, *memories.Index, func()) {
	blobs, err := fsStore.NewStore(&fsStore.Config{Root: t.TempDir()})
	require.NoError(t, err)

	index := memories.NewIndex(blobs)
	cleanup := func() {
		_ = blobs.Close()
	}
	return blobs, index, cleanup
}

func TestIndex_Upload(t *testing.T) {
	blobs, index, cleanup := setupIndexTest(t)
	defer cleanup()

	ctx := context.Background()

	rec, err := index.Upload(ctx, "asha_mother", "beach.JPG", []byte("fake jpeg"), memories.Record{
		Title:       "Beach trip",
		Description: "Summer 2019",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.MemoryID, "mem_"))
	assert.Len(t, rec.MemoryID, len("mem_")+8)
	assert.Equal(t, "asha_mother", rec.ProfileID)
	assert.Equal(t, memories.FileTypeImage, rec.FileType)
	assert.NotEmpty(t, rec.UploadDate)
	assert.Equal(t, "profiles/asha_mother/images/"+rec.MemoryID+".jpg", rec.FilePath)

	// File blob and metadata doc both exist.
	content, err := blobs.Get(ctx, rec.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg"), content)

	doc, err := blobs.Get(ctx, "profiles/asha_mother/metadata/"+rec.MemoryID+".json")
	require.NoError(t, err)
	var stored memories.Record
	require.NoError(t, json.Unmarshal(doc, &stored))
	assert.Equal(t, "Beach trip", stored.Title)
}

func TestIndex_UploadRequiresTitle(t *testing.T) {
	_, index, cleanup := setupIndexTest(t)
	defer cleanup()

	_, err := index.Upload(context.Background(), "asha_mother", "a.jpg", []byte("x"), memories.Record{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestIndex_UploadUnknownExtensionLandsInDocuments(t *testing.T) {
	_, index, cleanup := setupIndexTest(t)
	defer cleanup()

	rec, err := index.Upload(context.Background(), "asha_mother", "odd.zzz", []byte("x"), memories.Record{Title: "Odd"})
	require.NoError(t, err)
	assert.Equal(t, memories.FileTypeOther, rec.FileType)
	assert.Contains(t, rec.FilePath, "/documents/")
}

func TestIndex_ListSkipsMalformed(t *testing.T) {
	blobs, index, cleanup := setupIndexTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := index.Upload(ctx, "asha_mother", "a.jpg", []byte("x"), memories.Record{Title: "Good"})
	require.NoError(t, err)

	require.NoError(t, blobs.Put(ctx, "profiles/asha_mother/metadata/mem_broken1.json", []byte("{nope")))

	records, err := index.List(ctx, "asha_mother")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Good", records[0].Title)
}

func TestIndex_SummariesNewestFirst(t *testing.T) {
	blobs, index, cleanup := setupIndexTest(t)
	defer cleanup()

	ctx := context.Background()

	// Write metadata docs directly so the upload dates are controlled.
	older := memories.Record{MemoryID: "mem_aaaa0001", ProfileID: "asha_mother",
		Title: "Old", Description: "first", UploadDate: "2023-01-01T00:00:00Z"}
	newer := memories.Record{MemoryID: "mem_bbbb0002", ProfileID: "asha_mother",
		Title: "New", Description: "second", UploadDate: "2024-06-15T00:00:00Z"}
	for _, rec := range []memories.Record{older, newer} {
		doc, err := json.Marshal(rec)
		require.NoError(t, err)
		require.NoError(t, blobs.Put(ctx, "profiles/asha_mother/metadata/"+rec.MemoryID+".json", doc))
	}

	summaries, err := index.Summaries(ctx, "asha_mother")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "New", summaries[0].Title)
	assert.Equal(t, "Old", summaries[1].Title)
}

func TestIndex_LatestSummary(t *testing.T) {
	_, index, cleanup := setupIndexTest(t)
	defer cleanup()

	ctx := context.Background()

	summary, err := index.LatestSummary(ctx, "asha_mother")
	require.NoError(t, err)
	assert.Equal(t, "No past memories found.", summary)

	_, err = index.Upload(ctx, "asha_mother", "a.jpg", []byte("x"), memories.Record{
		Title:       "Beach trip",
		Description: "Summer 2019",
	})
	require.NoError(t, err)

	summary, err = index.LatestSummary(ctx, "asha_mother")
	require.NoError(t, err)
	assert.Equal(t, "Beach trip: Summer 2019", summary)
}
