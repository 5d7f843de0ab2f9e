// Package cmd defines and implements the CLI commands for the harvester
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kasunw/tripitaka-harvester/internal/config"
	"github.com/kasunw/tripitaka-harvester/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the app in the context.
type appKeyType string

const appKey appKeyType = "app"

// app bundles the loaded configuration and logger for subcommands.
type app struct {
	cfg config.Config
	log *zap.Logger
}

// newApp is the application factory. It's a variable so tests can replace
// it with a mock factory.
var newApp = func(_ context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{cfg: cfg, log: logger}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Bulk ingestion tool for the Sinhala Tripitaka on tripitaka.online",
		Long: `harvester walks the sutta number space of tripitaka.online, fetching each
page through a rendered-then-static strategy chain, extracting the Sinhala and
Pali text, judging content quality, and persisting size-bounded JSON batches
with durable progress checkpoints.`,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app); ok && a != nil {
				a.close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches . and $HOME/.harvester)")
	addBulkFlags(cmd)

	cmd.AddCommand(newRangeCmd())
	cmd.AddCommand(newCollectionCmd())
	cmd.AddCommand(newAllCmd())
	cmd.AddCommand(newPageCmd())
	cmd.AddCommand(newCollectionsCmd())

	return cmd
}

// addBulkFlags registers the run-tuning flags shared by every bulk command.
// A flag only overrides the config value when the user sets it.
func addBulkFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("output", "", "output directory for batches, checkpoint, and error log")
	pf.Int("batch-size", 0, "records per batch file")
	pf.Int("workers", 0, "concurrent pipeline workers")
	pf.Float64("rate", 0, "aggregate requests per second across all workers")
	pf.Float64("delay", 0, "seconds between requests (legacy knob, converted to rate)")
	pf.Bool("skip-invalid", false, "drop records that fail content validation")
	pf.Bool("no-resume", false, "ignore any existing progress checkpoint")
	pf.Bool("no-browser", false, "disable headless rendering, fetch statically only")
}

// applyFlagOverrides folds explicitly set flags into the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		v, _ := flags.GetString("output")
		cfg.Output.Dir = v
	}
	if flags.Changed("batch-size") {
		v, _ := flags.GetInt("batch-size")
		cfg.Bulk.BatchSize = v
	}
	if flags.Changed("workers") {
		v, _ := flags.GetInt("workers")
		cfg.Bulk.Workers = v
	}
	if flags.Changed("delay") {
		v, _ := flags.GetFloat64("delay")
		if v <= 0 {
			return fmt.Errorf("delay must be > 0 seconds, got %f", v)
		}
		cfg.Bulk.RatePerSecond = 1 / v
	}
	// An explicit rate wins over the legacy delay knob.
	if flags.Changed("rate") {
		v, _ := flags.GetFloat64("rate")
		cfg.Bulk.RatePerSecond = v
	}
	if flags.Changed("skip-invalid") {
		v, _ := flags.GetBool("skip-invalid")
		cfg.Bulk.SkipInvalid = v
	}
	if flags.Changed("no-resume") {
		v, _ := flags.GetBool("no-resume")
		cfg.Bulk.Resume = !v
	}
	if flags.Changed("no-browser") {
		v, _ := flags.GetBool("no-browser")
		cfg.Browser.Enabled = !v
	}
	return cfg.Validate()
}

func resolveApp(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
