package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordForError(t *testing.T) {
	t.Parallel()

	rec := RecordForError("https://tripitaka.online/sutta/265", 265)
	assert.Equal(t, QualityError, rec.ContentQuality)
	assert.False(t, rec.IsValidContent)
	assert.Equal(t, 265, rec.SuttaNumber)
	assert.Empty(t, rec.Content.Sinhala)
	assert.Empty(t, rec.Content.Pali)
	assert.False(t, rec.ScrapedAt.IsZero())
	require.NotNil(t, rec.Nikaya)
	assert.Equal(t, "majjhima", rec.Nikaya.Key)
}

func TestRecordForErrorOutsideKnownRanges(t *testing.T) {
	t.Parallel()

	rec := RecordForError("https://tripitaka.online/sutta/16000", 16000)
	assert.Equal(t, QualityError, rec.ContentQuality)
	assert.Nil(t, rec.Nikaya)
}
