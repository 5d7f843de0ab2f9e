package bulk

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogAppendsInOrder(t *testing.T) {
	t.Parallel()

	log := NewErrorLog(t.TempDir())

	records, err := log.Read()
	require.NoError(t, err)
	assert.Empty(t, records)

	first := ErrorRecord{
		URL:       "https://tripitaka.online/sutta/100",
		Error:     "fetch sutta 100: connection refused",
		Timestamp: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	second := ErrorRecord{
		URL:       "https://tripitaka.online/sutta/101",
		Error:     "sutta 101: no content extracted",
		Timestamp: first.Timestamp.Add(time.Minute),
	}
	require.NoError(t, log.Append(first))
	require.NoError(t, log.Append(second))

	records, err = log.Read()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.URL, records[0].URL)
	assert.Equal(t, second.URL, records[1].URL)
	assert.Equal(t, second.Error, records[1].Error)
}

func TestErrorLogIsOneObjectPerLine(t *testing.T) {
	t.Parallel()

	log := NewErrorLog(t.TempDir())
	for i := 0; i < 3; i++ {
		require.NoError(t, log.Append(ErrorRecord{URL: "u", Error: "e", Timestamp: time.Now()}))
	}

	raw, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "{"), "each line must be a standalone JSON object")
	}
}

func TestErrorLogSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, NewErrorLog(dir).Append(ErrorRecord{URL: "a", Error: "x", Timestamp: time.Now()}))
	require.NoError(t, NewErrorLog(dir).Append(ErrorRecord{URL: "b", Error: "y", Timestamp: time.Now()}))

	records, err := NewErrorLog(dir).Read()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].URL)
	assert.Equal(t, "b", records[1].URL)
}
