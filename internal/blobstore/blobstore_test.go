package blobstore

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveLoad(t *testing.T) {
	store := newTestStore(t)

	payload := []byte(`{"theme":"dark","columns":["number","destination"]}`)
	require.NoError(t, store.Save("panel-settings", payload))

	got, err := store.Load("panel-settings")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("state", []byte(`{"v":1}`)))
	require.NoError(t, store.Save("state", []byte(`{"v":2}`)))

	got, err := store.Load("state")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), got)
}

func TestLoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("never-saved")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBadKeys(t *testing.T) {
	store := newTestStore(t)

	for _, key := range []string{"", ".", "..", "../escape", "a/b", "a\\b", "sp ace"} {
		assert.ErrorIs(t, store.Save(key, []byte("{}")), ErrBadKey, key)

		_, err := store.Load(key)
		assert.ErrorIs(t, err, ErrBadKey, key)
	}
}
