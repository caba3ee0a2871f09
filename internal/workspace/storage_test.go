package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/nativewm/internal/config"
)

func TestStore_WriteReadListDelete(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "workspaces"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names, "missing directory lists nothing")

	snap := &Snapshot{
		Name:    "editing",
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Windows: []config.WindowSpec{
			{Name: "main", Type: "normal_window", Width: 800, Height: 600, Background: "#2e3440ff"},
			{Name: "about", Type: "dialog", X: 300, Y: 250, Width: 200, Height: 100},
		},
	}
	require.NoError(t, store.Write(snap))
	require.NoError(t, store.Write(&Snapshot{Name: "blank"}))

	got, err := store.Read("editing")
	require.NoError(t, err)
	assert.Equal(t, snap.Windows, got.Windows)
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"blank", "editing"}, names)

	require.NoError(t, store.Delete("blank"))
	assert.Error(t, store.Delete("blank"))
	_, err = store.Read("blank")
	assert.Error(t, err)
}

func TestStore_RejectsBadNames(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, name := range []string{"", "  ", "../x", "a/b", ".."} {
		assert.Error(t, store.Write(&Snapshot{Name: name}), "name %q", name)
	}
}

func TestStore_RejectsInvalidWindows(t *testing.T) {
	store := NewStore(t.TempDir())
	err := store.Write(&Snapshot{Name: "bad", Windows: []config.WindowSpec{{Name: "x", Type: "sheet"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "windows.0")
}

func TestStore_ReadFillsMissingName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solo.json"), []byte(`{"windows":[]}`), 0644))
	snap, err := NewStore(dir).Read("solo")
	require.NoError(t, err)
	assert.Equal(t, "solo", snap.Name)
}
