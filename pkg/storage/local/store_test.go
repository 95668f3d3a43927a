package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keepsake-app/keepsake-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header is enough for sniffing
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestPutGetDelete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Put(ctx, "photos/1-cat.png", bytes.NewReader(pngMagic), storage.PutOptions{ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "photos/1-cat.png", key)

	obj, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())

	assert.Equal(t, pngMagic, data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngMagic)), obj.Size)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.Delete(ctx, key), "deleting twice is fine")
}

func TestPutRandomSuffix(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, err := store.Put(context.Background(), "photos/1-beach.jpg", strings.NewReader("x"), storage.PutOptions{AddRandomSuffix: true})
	require.NoError(t, err)
	assert.Regexp(t, `^photos/1-beach-[0-9a-f]{8}\.jpg$`, key)

	_, err = os.Stat(filepath.Join(store.Root(), filepath.FromSlash(key)))
	assert.NoError(t, err)
}

func TestGetMissing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "photos/none.jpg")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Get(context.Background(), "photos")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.txt", strings.NewReader("x"), storage.PutOptions{})
	assert.Error(t, err)
	_, err = store.Get(context.Background(), "photos/../../etc/passwd")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "nested", "blobs"))
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
}
