package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/metrics"
)

// navigator is the slice of BrowserSession the rendered strategy needs;
// tests substitute a fake.
type navigator interface {
	Navigate(ctx context.Context, url string) (string, error)
}

// RenderedStrategy fetches pages through the headless browser session. It is
// the expensive path and the only one that sees script-generated content.
type RenderedStrategy struct {
	session navigator
	baseURL string
	logger  *zap.Logger
}

// NewRenderedStrategy wraps a browser session as a fetch strategy.
func NewRenderedStrategy(session navigator, baseURL string, logger *zap.Logger) *RenderedStrategy {
	return &RenderedStrategy{
		session: session,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Name identifies the strategy in logs and fetch-method labels.
func (r *RenderedStrategy) Name() string { return MethodRendered }

// Fetch navigates to the sutta page and returns the rendered DOM. Session
// recovery (probe, teardown, recreate within budget) happens inside the
// session; an error here means the budget is exhausted or the page itself
// failed to load.
func (r *RenderedStrategy) Fetch(ctx context.Context, id int) (Page, error) {
	url := SuttaURL(r.baseURL, id)
	start := time.Now()
	html, err := r.session.Navigate(ctx, url)
	if err != nil {
		return Page{}, err
	}
	elapsed := time.Since(start)
	metrics.FetchDuration.WithLabelValues(MethodRendered).Observe(elapsed.Seconds())
	return Page{
		SuttaID:   id,
		URL:       url,
		HTML:      html,
		Method:    MethodRendered,
		FetchedAt: time.Now().UTC(),
		Duration:  elapsed,
	}, nil
}
