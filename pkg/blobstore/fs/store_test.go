package fs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermem/evermem-go/pkg/blobstore"
	fsStore "github.com/evermem/evermem-go/pkg/blobstore/fs"
)

func setupFSTest(t *testing.T) (blobstore.Store, func()) {
	store, err := fsStore.NewStore(&fsStore.Config{Root: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		_ = store.Close()
	}
	return store, cleanup
}

func TestFSStore_PutGet(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	ctx := context.Background()

	err := store.Put(ctx, "profiles/asha_mother/profile.json", []byte(`{"name":"Asha"}`))
	require.NoError(t, err)

	data, err := store.Get(ctx, "profiles/asha_mother/profile.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"Asha"}`), data)
}

func TestFSStore_PutOverwrites(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/b.txt", []byte("one")))
	require.NoError(t, store.Put(ctx, "a/b.txt", []byte("two")))

	data, err := store.Get(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestFSStore_GetNotFound(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "missing/blob.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestFSStore_List(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "profiles/asha_mother/metadata/b.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "profiles/asha_mother/metadata/a.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "profiles/ravi_uncle/metadata/c.json", []byte("{}")))

	paths, err := store.List(ctx, "profiles/asha_mother/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"profiles/asha_mother/metadata/a.json",
		"profiles/asha_mother/metadata/b.json",
	}, paths)

	all, err := store.List(ctx, "profiles/")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFSStore_Exists(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	ctx := context.Background()

	ok, err := store.Exists(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "a/b.txt", []byte("x")))

	ok, err = store.Exists(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFSStore_DeleteAbsentOK(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	assert.NoError(t, store.Delete(context.Background(), "never/was.txt"))
}

func TestFSStore_DeleteAll(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "profiles/asha_mother/images/a.jpg", []byte("x")))
	require.NoError(t, store.Put(ctx, "profiles/asha_mother/metadata/a.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "profiles/ravi_uncle/profile.json", []byte("{}")))

	require.NoError(t, store.DeleteAll(ctx, "profiles/asha_mother/"))

	paths, err := store.List(ctx, "profiles/")
	require.NoError(t, err)
	assert.Equal(t, []string{"profiles/ravi_uncle/profile.json"}, paths)
}

func TestFSStore_RejectsEscapingPaths(t *testing.T) {
	store, cleanup := setupFSTest(t)
	defer cleanup()

	ctx := context.Background()

	err := store.Put(ctx, "../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = store.Get(ctx, "/etc/passwd")
	assert.Error(t, err)
}
