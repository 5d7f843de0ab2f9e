package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNavigator struct {
	html string
	err  error
	urls []string
}

func (f *fakeNavigator) Navigate(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func TestRenderedStrategyFetch(t *testing.T) {
	t.Parallel()

	nav := &fakeNavigator{html: "<html><body>ok</body></html>"}
	r := NewRenderedStrategy(nav, "https://tripitaka.online", zap.NewNop())

	page, err := r.Fetch(context.Background(), 1173)
	require.NoError(t, err)
	assert.Equal(t, "https://tripitaka.online/sutta/1173", page.URL)
	assert.Equal(t, MethodRendered, page.Method)
	assert.Equal(t, nav.html, page.HTML)
	assert.Equal(t, 1173, page.SuttaID)
	assert.False(t, page.FetchedAt.IsZero())
	assert.Equal(t, []string{"https://tripitaka.online/sutta/1173"}, nav.urls)
}

func TestRenderedStrategyPropagatesSessionErrors(t *testing.T) {
	t.Parallel()

	nav := &fakeNavigator{err: errors.New("browser gone")}
	r := NewRenderedStrategy(nav, "https://tripitaka.online", zap.NewNop())

	_, err := r.Fetch(context.Background(), 42)
	require.Error(t, err)
}
