package bulk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewCheckpointStore(t.TempDir())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found, "fresh directory must have no checkpoint")

	started := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	saved := Progress{
		ScrapedCount: 420,
		ErrorCount:   17,
		LastUpdate:   started.Add(2 * time.Hour),
		StartTime:    &started,
	}
	require.NoError(t, store.Save(saved))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 420, loaded.ScrapedCount)
	assert.Equal(t, 17, loaded.ErrorCount)
	assert.True(t, loaded.LastUpdate.Equal(saved.LastUpdate))
	require.NotNil(t, loaded.StartTime)
	assert.True(t, loaded.StartTime.Equal(started))
}

func TestCheckpointSaveOverwrites(t *testing.T) {
	t.Parallel()

	store := NewCheckpointStore(t.TempDir())
	require.NoError(t, store.Save(Progress{ScrapedCount: 1}))
	require.NoError(t, store.Save(Progress{ScrapedCount: 2}))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, loaded.ScrapedCount)
}

func TestCheckpointLoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, progressFileName), []byte("{not json"), 0o600))

	_, _, err := NewCheckpointStore(dir).Load()
	require.Error(t, err)
}
