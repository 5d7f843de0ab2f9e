package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/metrics"
)

// StaticConfig controls the plain-HTTP fetch path.
type StaticConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// StaticStrategy fetches pages with a single HTTP GET through Colly. It is
// cheap but blind to script-generated content, so its results carry a
// distinct fetch method for downstream labeling.
type StaticStrategy struct {
	cfg           StaticConfig
	logger        *zap.Logger
	baseCollector *colly.Collector
}

// NewStaticStrategy builds the static fetcher.
func NewStaticStrategy(cfg StaticConfig, logger *zap.Logger) *StaticStrategy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := colly.NewCollector()
	// colly v2.1.0's Async(false) option unconditionally enables async mode;
	// set the field directly to keep the collector synchronous.
	c.Async = false
	c.IgnoreRobotsTxt = true
	// Clones share visit storage; revisits happen when an ID is retried.
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())
	return &StaticStrategy{
		cfg:           cfg,
		logger:        logger,
		baseCollector: c,
	}
}

// Name identifies the strategy in logs and fetch-method labels.
func (s *StaticStrategy) Name() string { return MethodStatic }

// Fetch executes a single HTTP GET for the sutta page.
func (s *StaticStrategy) Fetch(ctx context.Context, id int) (Page, error) {
	url := SuttaURL(s.cfg.BaseURL, id)
	start := time.Now()

	var (
		body     []byte
		fetchErr error
	)
	collector := s.baseCollector.Clone()
	if s.cfg.UserAgent != "" {
		collector.UserAgent = s.cfg.UserAgent
	}
	collector.SetRequestTimeout(s.cfg.Timeout)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := s.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return Page{}, err
	}

	elapsed := time.Since(start)
	metrics.FetchDuration.WithLabelValues(MethodStatic).Observe(elapsed.Seconds())
	return Page{
		SuttaID:   id,
		URL:       url,
		HTML:      string(body),
		Method:    MethodStatic,
		FetchedAt: time.Now().UTC(),
		Duration:  elapsed,
	}, nil
}

// Probe issues a GET against the base URL to confirm the static path is
// usable at all. Called when the rendered session could not be started, so
// a failure here means no strategy can serve fetches.
func (s *StaticStrategy) Probe(ctx context.Context) error {
	collector := s.baseCollector.Clone()
	if s.cfg.UserAgent != "" {
		collector.UserAgent = s.cfg.UserAgent
	}
	collector.SetRequestTimeout(s.cfg.Timeout)
	var probeErr error
	collector.OnError(func(_ *colly.Response, err error) {
		probeErr = err
	})
	if err := s.runCollector(ctx, collector, s.cfg.BaseURL, &probeErr); err != nil {
		return fmt.Errorf("static probe of %s: %w", s.cfg.BaseURL, err)
	}
	return nil
}

func (s *StaticStrategy) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("static fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("static visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("static response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
