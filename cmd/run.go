package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/bulk"
)

// runBulk is the shared driver for every bulk subcommand: resolve the app,
// fold flag overrides, build the pipeline, run under SIGINT/SIGTERM
// cancellation, and report the summary.
func runBulk(cmd *cobra.Command, fn func(ctx context.Context, o *bulk.Orchestrator, a *app) (bulk.Summary, error)) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, &a.cfg); err != nil {
		return err
	}

	p, err := buildPipeline(cmd.Context(), a.cfg, a.log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	o, err := p.orchestrator(a.cfg)
	if err != nil {
		p.close(ctx)
		return err
	}

	summary, err := fn(ctx, o, a)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	p.close(shutdownCtx)
	cancel()

	a.log.Info("run summary",
		zap.Int("attempted", summary.Attempted),
		zap.Int("scraped", summary.Scraped),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("batches", summary.Batches),
		zap.Duration("duration", summary.Duration),
		zap.Float64("per_minute", summary.PerMinute()))

	if errors.Is(err, context.Canceled) {
		a.log.Warn("run interrupted, progress checkpointed")
		return nil
	}
	return err
}
