package fetch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/metrics"
)

// Coordinator composes fetch strategies into an ordered fallback chain. The
// first strategy to succeed wins; later strategies never run. Adding or
// reordering strategies is a construction-time data change.
type Coordinator struct {
	strategies []Strategy
	baseURL    string
	logger     *zap.Logger
}

// NewCoordinator builds a coordinator over the given chain. Strategies are
// tried in the order supplied.
func NewCoordinator(baseURL string, logger *zap.Logger, strategies ...Strategy) (*Coordinator, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one fetch strategy is required")
	}
	return &Coordinator{
		strategies: strategies,
		baseURL:    baseURL,
		logger:     logger,
	}, nil
}

// URLFor returns the page URL a fetch of id would target.
func (c *Coordinator) URLFor(id int) string {
	return SuttaURL(c.baseURL, id)
}

// Fetch runs the strategy chain for one identifier. A strategy error is
// swallowed as long as a later strategy succeeds; only total failure is
// surfaced, wrapped in ErrAllStrategiesFailed. The underlying errors stay
// inspectable through errors.Is, so a cancellation inside the last strategy
// is still recognizable as one.
func (c *Coordinator) Fetch(ctx context.Context, id int) (Page, error) {
	var failures []error
	for i, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return Page{}, fmt.Errorf("fetch canceled: %w", err)
		}
		page, err := strategy.Fetch(ctx, id)
		if err == nil {
			if i > 0 {
				metrics.StaticFallbacks.Inc()
				c.logger.Debug("fallback strategy served fetch",
					zap.Int("sutta", id),
					zap.String("strategy", strategy.Name()),
				)
			}
			return page, nil
		}
		failures = append(failures, fmt.Errorf("%s: %w", strategy.Name(), err))
		c.logger.Warn("fetch strategy failed",
			zap.Int("sutta", id),
			zap.String("strategy", strategy.Name()),
			zap.Error(err),
		)
	}
	return Page{}, fmt.Errorf("%w for sutta %d: %w", ErrAllStrategiesFailed, id, errors.Join(failures...))
}
