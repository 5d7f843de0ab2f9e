package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/bulk"
	"github.com/kasunw/tripitaka-harvester/internal/config"
	"github.com/kasunw/tripitaka-harvester/internal/fetch"
	"github.com/kasunw/tripitaka-harvester/internal/scrape"
	"github.com/kasunw/tripitaka-harvester/internal/status"
)

// pipeline holds the constructed fetch/extract/validate stages plus the
// resources that need teardown when the run ends.
type pipeline struct {
	coordinator *fetch.Coordinator
	extractor   *scrape.Extractor
	validator   *scrape.Validator
	browser     *fetch.BrowserSession
	status      *status.Server
	log         *zap.Logger
}

// buildPipeline assembles the strategy chain. A browser that fails to start
// is downgraded to a warning and the run proceeds static-only, but only if a
// probe shows the static path works; with both paths dead the run aborts
// here rather than producing an all-error output.
func buildPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) (*pipeline, error) {
	staticStrategy := fetch.NewStaticStrategy(fetch.StaticConfig{
		BaseURL:   cfg.Fetch.BaseURL,
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.RequestTimeout,
	}, logger)

	var strategies []fetch.Strategy
	var browser *fetch.BrowserSession
	if cfg.Browser.Enabled {
		var err error
		browser, err = fetch.NewBrowserSession(fetch.BrowserConfig{
			UserAgent:       cfg.Fetch.UserAgent,
			NavTimeout:      cfg.Browser.NavTimeout,
			SettleDelay:     cfg.Browser.SettleDelay,
			RestartAttempts: cfg.Browser.RestartAttempts,
			RestartBackoff:  cfg.Browser.RestartBackoff,
		}, logger)
		if err != nil {
			probeCtx, cancel := context.WithTimeout(ctx, cfg.Fetch.RequestTimeout)
			probeErr := staticStrategy.Probe(probeCtx)
			cancel()
			if probeErr != nil {
				return nil, fmt.Errorf("no usable fetch path: browser failed (%v); %w", err, probeErr)
			}
			logger.Warn("headless browser unavailable, continuing static-only", zap.Error(err))
		} else {
			strategies = append(strategies, fetch.NewRenderedStrategy(browser, cfg.Fetch.BaseURL, logger))
		}
	}
	strategies = append(strategies, staticStrategy)

	coordinator, err := fetch.NewCoordinator(cfg.Fetch.BaseURL, logger, strategies...)
	if err != nil {
		if browser != nil {
			browser.Close()
		}
		return nil, fmt.Errorf("build fetch chain: %w", err)
	}

	return &pipeline{
		coordinator: coordinator,
		extractor:   scrape.NewExtractor(),
		validator:   scrape.NewValidator(validatorConfig(cfg)),
		browser:     browser,
		log:         logger,
	}, nil
}

// orchestrator wires the pipeline into a bulk run rooted at the config's
// output dir, starting the status listener when enabled.
func (p *pipeline) orchestrator(cfg config.Config) (*bulk.Orchestrator, error) {
	o, err := bulk.New(bulk.Deps{
		Fetcher:   p.coordinator,
		Extractor: p.extractor,
		Validator: p.validator,
		Logger:    p.log,
	}, bulk.Options{
		OutputDir:       cfg.Output.Dir,
		BatchSize:       cfg.Bulk.BatchSize,
		Workers:         cfg.Bulk.Workers,
		RatePerSecond:   cfg.Bulk.RatePerSecond,
		CheckpointEvery: cfg.Bulk.CheckpointEvery,
		SkipInvalid:     cfg.Bulk.SkipInvalid,
		Resume:          cfg.Bulk.Resume,
		EndBuffer:       cfg.Bulk.EndBuffer,
		HardCap:         cfg.Bulk.HardCap,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Status.Enabled {
		points := bulk.NewCheckpointStore(cfg.Output.Dir)
		p.status = status.New(cfg.Status.Addr, func() bulk.Progress {
			progress, _, err := points.Load()
			if err != nil {
				p.log.Warn("progress snapshot failed", zap.Error(err))
			}
			return progress
		}, p.log)
		p.status.Start()
	}

	return o, nil
}

func (p *pipeline) close(ctx context.Context) {
	if p.status != nil {
		if err := p.status.Shutdown(ctx); err != nil {
			p.log.Warn("status server shutdown failed", zap.Error(err))
		}
	}
	if p.browser != nil {
		p.browser.Close()
	}
}

func validatorConfig(cfg config.Config) scrape.ValidatorConfig {
	return scrape.ValidatorConfig{
		MinContentChars:        cfg.Validator.MinContentChars,
		ShortContentChars:      cfg.Validator.ShortContentChars,
		LongContentChars:       cfg.Validator.LongContentChars,
		ShortRepetitionRatio:   cfg.Validator.ShortRepetitionRatio,
		ExtremeRepetitionRatio: cfg.Validator.ExtremeRepetitionRatio,
		MinTokensForRatio:      cfg.Validator.MinTokensForRatio,
		PlaceholderTitles:      cfg.Validator.PlaceholderTitles,
		BoilerplatePhrases:     cfg.Validator.BoilerplatePhrases,
		GenuinePhrases:         cfg.Validator.GenuinePhrases,
	}
}
