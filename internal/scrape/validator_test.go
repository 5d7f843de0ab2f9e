package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testValidator() *Validator {
	return NewValidator(ValidatorConfig{
		MinContentChars:        500,
		ShortContentChars:      2000,
		LongContentChars:       2000,
		ShortRepetitionRatio:   0.3,
		ExtremeRepetitionRatio: 0.03,
		MinTokensForRatio:      10,
		PlaceholderTitles:      []string{"tripitaka.online", "Untitled"},
		BoilerplatePhrases: []string{
			"Previous Next",
			"© 1999 - 2021 Mahamevnawa Buddhist Monastery",
			"Contact: info@tripitaka.online",
		},
		GenuinePhrases: []string{"ඒවං මේ සුතං", "Thus have I heard"},
	})
}

// varied produces n space-separated distinct tokens, so the repetition rules
// stay quiet.
func varied(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "token" + strings.Repeat("x", i%7) + string(rune('a'+i%26))
	}
	return strings.Join(parts, " ")
}

func TestValidateRejectsPlaceholderTitles(t *testing.T) {
	t.Parallel()
	v := testValidator()
	body := varied(200)

	for _, title := range []string{"", "  ", "Untitled", "tripitaka.online"} {
		verdict := v.Validate(body, "", title)
		assert.False(t, verdict.Acceptable, "title %q should be rejected", title)
		assert.Equal(t, QualityInvalid, verdict.Quality)
	}
}

func TestValidateRejectsShortContent(t *testing.T) {
	t.Parallel()
	v := testValidator()

	verdict := v.Validate("too short", "", "A Real Title")
	assert.False(t, verdict.Acceptable)
	assert.Equal(t, QualityInvalid, verdict.Quality)
}

func TestValidateBoilerplateRule(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// Two distinct boilerplate phrases, zero genuine phrases, >=500 chars.
	filler := varied(120)
	boilerplate := filler + " Previous Next ... Contact: info@tripitaka.online"
	verdict := v.Validate(boilerplate, "", "Some Page")
	assert.False(t, verdict.Acceptable)

	// The same text with one genuine phrase is not rejected by this rule.
	withGenuine := boilerplate + " Thus have I heard"
	verdict = v.Validate(withGenuine, "", "Some Page")
	assert.True(t, verdict.Acceptable)
}

func TestValidateRepetitionRules(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// 11 tokens, one distinct: caught well before the ratio rule because the
	// text is under the minimum length, but it must be rejected either way.
	verdict := v.Validate("a a a a a a a a a a a", "", "Title")
	assert.False(t, verdict.Acceptable)

	// Long enough to pass the minimum length but tightly repetitive and
	// under the short-content bound: rejected by the lenient cutoff.
	short := strings.Repeat("repeatedword ", 150) // ~1950 chars, ratio ~0.007
	verdict = v.Validate(short, "", "Title")
	assert.False(t, verdict.Acceptable)

	// Near-total repetition is rejected regardless of length.
	long := strings.Repeat("samething ", 600) // ~6000 chars
	verdict = v.Validate(long, "", "Title")
	assert.False(t, verdict.Acceptable)
}

func TestValidateLongContent(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// Long varied text with a genuine phrase: accepted at full confidence,
	// regardless of its repetition ratio.
	long := varied(400) + " ඒවං මේ සුතං"
	verdict := v.Validate(long, "", "මහාසතිපට්ඨාන සූත්‍රය")
	assert.True(t, verdict.Acceptable)
	assert.Equal(t, QualityValid, verdict.Quality)

	// Long varied text with no positive signal: accepted but flagged.
	verdict = v.Validate(varied(400), "", "මහාසතිපට්ඨාන සූත්‍රය")
	assert.True(t, verdict.Acceptable)
	assert.Equal(t, QualityFallback, verdict.Quality)
}

func TestValidateAcceptsMediumContent(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// Between the minimum and the long-content threshold with healthy
	// variety: plain accept.
	verdict := v.Validate(varied(120), "", "A Title")
	assert.True(t, verdict.Acceptable)
	assert.Equal(t, QualityValid, verdict.Quality)
}

func TestValidateIsDeterministic(t *testing.T) {
	t.Parallel()
	v := testValidator()

	body := varied(300)
	first := v.Validate(body, "pali text here", "Title")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, v.Validate(body, "pali text here", "Title"))
	}
}
