package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://tripitaka.online/sutta/265"

func TestExtractLanguageDivs(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	html := `<html><head><title>tripitaka.online</title></head><body>
		<h1>මූලපරියාය සූත්‍රය</h1>
		<div lang="si">මා හට අසන්නට ලැබුණේ මේ ආකාරයෙන්</div>
		<div lang="pi">evaṃ me sutaṃ ekaṃ samayaṃ bhagavā</div>
	</body></html>`

	out, err := e.Extract(html, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "මූලපරියාය සූත්‍රය", out.Title)
	assert.Contains(t, out.Sinhala, "මා හට අසන්නට ලැබුණේ")
	assert.Contains(t, out.Pali, "evaṃ me sutaṃ")
}

func TestExtractClassSelectors(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	html := `<html><body>
		<div class="sutta-title">සතිපට්ඨාන</div>
		<div class="sinhala-text">සිංහල පෙළ මෙතැන</div>
		<div class="pali-text">pali patho ettha</div>
	</body></html>`

	out, err := e.Extract(html, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "සතිපට්ඨාන", out.Title)
	assert.Equal(t, "සිංහල පෙළ මෙතැන", out.Sinhala)
	assert.Equal(t, "pali patho ettha", out.Pali)
}

func TestExtractTitleFallbacks(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	html := `<html><head>
		<meta property="og:title" content="බ්‍රහ්මජාල සූත්‍රය"/>
		<title>tripitaka.online</title>
	</head><body><p>x</p></body></html>`

	out, err := e.Extract(html, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "බ්‍රහ්මජාල සූත්‍රය", out.Title)

	out, err = e.Extract(`<html><head><title>Page Title</title></head><body></body></html>`, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "Page Title", out.Title)

	out, err = e.Extract(`<html><body></body></html>`, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", out.Title)
}

func TestExtractGenericContainerClassification(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	sinhalaBlock := strings.Repeat("බුදුරජාණන් වහන්සේ වදාළ දෙසුම ", 10)
	html := `<html><body><main>` + sinhalaBlock + `</main></body></html>`

	out, err := e.Extract(html, pageURL)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Sinhala)
	assert.Empty(t, out.Pali)

	latinBlock := strings.Repeat("namo tassa bhagavato arahato sammasambuddhassa ", 5)
	html = `<html><body><article>` + latinBlock + `</article></body></html>`

	out, err = e.Extract(html, pageURL)
	require.NoError(t, err)
	assert.Empty(t, out.Sinhala)
	assert.NotEmpty(t, out.Pali)
}

func TestExtractEmptyPage(t *testing.T) {
	t.Parallel()
	e := NewExtractor()

	out, err := e.Extract(`<html><body><nav>Previous Next</nav></body></html>`, pageURL)
	require.NoError(t, err)
	assert.True(t, out.Empty())
}

func TestContainsSinhalaScript(t *testing.T) {
	t.Parallel()

	assert.True(t, containsSinhalaScript("අආඇ"))
	assert.True(t, containsSinhalaScript("mixed සූත්‍රය text"))
	assert.False(t, containsSinhalaScript("evam me sutam"))
	assert.False(t, containsSinhalaScript(""))
}
