package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/metrics"
)

// BrowserConfig controls the headless rendering session.
type BrowserConfig struct {
	UserAgent       string
	NavTimeout      time.Duration
	SettleDelay     time.Duration
	RestartAttempts int
	RestartBackoff  time.Duration
}

// BrowserSession owns one long-lived headless Chrome instance, reused across
// many fetches to amortize startup cost. Navigation is serialized: only one
// page load may be in flight on the session at a time. The session is
// explicitly injectable so tests can substitute a fake navigator.
type BrowserSession struct {
	cfg    BrowserConfig
	logger *zap.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowserSession starts a headless browser and warms it up. A failure
// here means no rendered fetches are possible; callers decide whether that
// is fatal for the run.
func NewBrowserSession(cfg BrowserConfig, logger *zap.Logger) (*BrowserSession, error) {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.RestartAttempts <= 0 {
		cfg.RestartAttempts = 3
	}
	if cfg.RestartBackoff <= 0 {
		cfg.RestartBackoff = 5 * time.Second
	}
	s := &BrowserSession{cfg: cfg, logger: logger}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BrowserSession) start() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("disable-extensions", true),
	)
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("chromedp warmup: %w", err)
	}
	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	return nil
}

func (s *BrowserSession) teardown() {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.browserCtx = nil
}

// Probe checks that the browser still answers a trivial evaluation, the
// equivalent of asking a webdriver for its current URL.
func (s *BrowserSession) Probe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probeLocked(ctx)
}

func (s *BrowserSession) probeLocked(ctx context.Context) error {
	if s.browserCtx == nil {
		return ErrSessionUnavailable
	}
	probeCtx, cancel := context.WithTimeout(s.browserCtx, 5*time.Second)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	var href string
	if err := chromedp.Run(probeCtx, chromedp.Evaluate("window.location.href", &href)); err != nil {
		return fmt.Errorf("session probe: %w", err)
	}
	return nil
}

// Recreate tears the session down and starts a fresh browser, retrying up to
// the configured budget with a fixed backoff between attempts.
func (s *BrowserSession) Recreate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recreateLocked(ctx)
}

func (s *BrowserSession) recreateLocked(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.RestartAttempts; attempt++ {
		s.teardown()
		metrics.BrowserRestarts.Inc()
		s.logger.Warn("recreating browser session",
			zap.Int("attempt", attempt),
			zap.Int("budget", s.cfg.RestartAttempts),
		)
		if lastErr = s.start(); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("session recreate canceled: %w", ctx.Err())
		case <-time.After(s.cfg.RestartBackoff):
		}
	}
	return fmt.Errorf("%w: %v", ErrSessionUnavailable, lastErr)
}

// Navigate loads url, waits for client-side rendering to settle, and returns
// the DOM snapshot. The session lock is held for the whole navigation; no
// two navigations ever overlap on one browser instance. A broken session is
// recreated (within budget) before the error is surfaced.
func (s *BrowserSession) Navigate(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx == nil {
		if err := s.recreateLocked(ctx); err != nil {
			return "", err
		}
	}
	if err := s.probeLocked(ctx); err != nil {
		s.logger.Warn("browser session unresponsive before navigation", zap.Error(err))
		if err := s.recreateLocked(ctx); err != nil {
			return "", err
		}
	}

	html, err := s.navigateLocked(ctx, url)
	if err == nil {
		return html, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	// One recovery pass: a navigation exception usually means the tab or
	// browser died mid-flight, not that the page is bad.
	s.logger.Warn("navigation failed, recycling session", zap.String("url", url), zap.Error(err))
	if rerr := s.recreateLocked(ctx); rerr != nil {
		return "", rerr
	}
	return s.navigateLocked(ctx, url)
}

func (s *BrowserSession) navigateLocked(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, s.cfg.NavTimeout+s.cfg.SettleDelay)
	defer cancelTask()
	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
	}
	if s.cfg.UserAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(s.cfg.UserAgent))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

// Close releases the browser and allocator.
func (s *BrowserSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown()
}

// forwardCancel propagates cancellation from parent to cancel until the
// returned stop function runs.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
