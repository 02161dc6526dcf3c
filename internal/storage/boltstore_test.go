package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/clipdeck/internal/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(StoreConfig{DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	entries := []types.ClipboardEntry{
		{ID: 2, Type: types.TypeText, Content: "world", Created: time.Now().UTC()},
		{ID: 1, Type: types.TypeText, Content: "hello", Created: time.Now().UTC(), Pinned: true},
	}
	require.NoError(t, store.SaveHistory(entries))

	loaded, err := store.LoadHistory()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "world", loaded[0].Content)
	assert.Equal(t, "hello", loaded[1].Content)
	assert.True(t, loaded[1].Pinned)
}

func TestBoltStoreHistoryEmptyOnFirstRun(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadHistory()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestBoltStoreSettings(t *testing.T) {
	store := newTestStore(t)

	v, err := store.GetSetting("hotkey", "Super+V")
	require.NoError(t, err)
	assert.Equal(t, "Super+V", v)

	require.NoError(t, store.SetSetting("hotkey", "Ctrl+Alt+V"))

	v, err = store.GetSetting("hotkey", "Super+V")
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Alt+V", v)
}

func TestBoltStoreRecentEmojis(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadRecentEmojis()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, store.SaveRecentEmojis([]string{"a", "b"}))

	loaded, err = store.LoadRecentEmojis()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, loaded)
}

func TestBoltStoreOverwriteIsLatestState(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveHistory([]types.ClipboardEntry{{ID: 1, Content: "a"}}))
	require.NoError(t, store.SaveHistory([]types.ClipboardEntry{{ID: 2, Content: "b"}}))

	loaded, err := store.LoadHistory()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "b", loaded[0].Content)
}
