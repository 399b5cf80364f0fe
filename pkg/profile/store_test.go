package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermem/evermem-go/pkg/blobstore"
	fsStore "github.com/evermem/evermem-go/pkg/blobstore/fs"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/profile"
)

func setupProfileTest(t *testing.T) (blobstore.Store, *profile.Store, func()) {
	blobs, err := fsStore.NewStore(&fsStore.Config{Root: t.TempDir()})
	require.NoError(t, err)

	store := profile.NewStore(blobs)
	cleanup := func() {
		_ = blobs.Close()
	}
	return blobs, store, cleanup
}

func TestDeriveID(t *testing.T) {
	assert.Equal(t, "asha_mother", profile.DeriveID("Asha", "Mother"))
	assert.Equal(t, "asha_mother", profile.DeriveID("asha", "mother"))
	assert.Equal(t, "uncle_ravi_family_friend", profile.DeriveID("Uncle Ravi", "Family Friend"))
	assert.Equal(t, "asha_mother", profile.DeriveID("  Asha  ", " Mother "))
}

func TestStore_Create(t *testing.T) {
	blobs, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := store.Create(ctx, profile.Profile{
		Name:        "Asha",
		Relation:    "Mother",
		Personality: "Warm and funny",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha_mother", created.ID)

	// Category namespaces are pre-created.
	for _, category := range []string{"images", "videos", "audios", "documents", "metadata"} {
		ok, err := blobs.Exists(ctx, "profiles/asha_mother/"+category+"/.init")
		require.NoError(t, err)
		assert.True(t, ok, category)
	}

	got, err := store.Get(ctx, "asha_mother")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "Warm and funny", got.Personality)
}

func TestStore_CreateDuplicateRejected(t *testing.T) {
	_, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()

	first, err := store.Create(ctx, profile.Profile{Name: "Asha", Relation: "Mother", Style: "Casual"})
	require.NoError(t, err)

	// Same derived ID, different casing.
	_, err = store.Create(ctx, profile.Profile{Name: "ASHA", Relation: "mother"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrProfileExists)

	// The original document is untouched.
	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casual", got.Style)
}

func TestStore_CreateRequiresNameAndRelation(t *testing.T) {
	_, store, cleanup := setupProfileTest(t)
	defer cleanup()

	_, err := store.Create(context.Background(), profile.Profile{Name: "Asha"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = store.Create(context.Background(), profile.Profile{Relation: "Mother"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStore_GetNotFound(t *testing.T) {
	_, store, cleanup := setupProfileTest(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "nobody_friend")
	assert.ErrorIs(t, err, core.ErrProfileNotFound)
}

func TestStore_GetCorrupt(t *testing.T) {
	blobs, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, blobs.Put(ctx, profile.DocPath("asha_mother"), []byte("{broken")))

	_, err := store.Get(ctx, "asha_mother")
	assert.ErrorIs(t, err, core.ErrCorruptDocument)
}

func TestStore_List(t *testing.T) {
	blobs, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.Create(ctx, profile.Profile{Name: "Asha", Relation: "Mother"})
	require.NoError(t, err)
	_, err = store.Create(ctx, profile.Profile{Name: "Ravi", Relation: "Uncle"})
	require.NoError(t, err)

	// A corrupt profile is skipped, not fatal.
	require.NoError(t, blobs.Put(ctx, profile.DocPath("broken_one"), []byte("{")))

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	ids := []string{profiles[0].ID, profiles[1].ID}
	assert.Contains(t, ids, "asha_mother")
	assert.Contains(t, ids, "ravi_uncle")
}

func TestStore_DeleteCascades(t *testing.T) {
	blobs, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.Create(ctx, profile.Profile{Name: "Asha", Relation: "Mother"})
	require.NoError(t, err)
	require.NoError(t, store.SaveFact(ctx, "asha_mother", "favorite_food", "dosa"))

	require.NoError(t, store.Delete(ctx, "asha_mother"))

	paths, err := blobs.List(ctx, "profiles/asha_mother/")
	require.NoError(t, err)
	assert.Empty(t, paths)

	err = store.Delete(ctx, "asha_mother")
	assert.ErrorIs(t, err, core.ErrProfileNotFound)
}

func TestStore_FactsEmptyByDefault(t *testing.T) {
	_, store, cleanup := setupProfileTest(t)
	defer cleanup()

	facts, err := store.Facts(context.Background(), "asha_mother")
	require.NoError(t, err)
	assert.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestStore_SaveFactUpserts(t *testing.T) {
	_, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.SaveFact(ctx, "asha_mother", "favorite_food", "idli"))
	require.NoError(t, store.SaveFact(ctx, "asha_mother", "favorite_food", "dosa"))
	require.NoError(t, store.SaveFact(ctx, "asha_mother", "birthday", "March 3rd"))

	facts, err := store.Facts(ctx, "asha_mother")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"favorite_food": "dosa",
		"birthday":      "March 3rd",
	}, facts)
}

func TestStore_SaveFactRequiresKey(t *testing.T) {
	_, store, cleanup := setupProfileTest(t)
	defer cleanup()

	err := store.SaveFact(context.Background(), "asha_mother", "   ", "value")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStore_FactsCorrupt(t *testing.T) {
	blobs, store, cleanup := setupProfileTest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, blobs.Put(ctx, profile.FactsPath("asha_mother"), []byte("not json")))

	_, err := store.Facts(ctx, "asha_mother")
	assert.ErrorIs(t, err, core.ErrCorruptDocument)
}
