package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kasunw/tripitaka-harvester/internal/bulk"
)

// newRangeCmd creates the 'range' subcommand, which harvests an explicit
// span of sutta numbers.
func newRangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range <start> [end]",
		Short: "Harvest a span of sutta numbers",
		Long: `Harvests every sutta number from start to end inclusive. When end is
omitted it is derived from the highest known collection boundary plus a
discovery buffer, clamped to the configured hard cap.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runRangeCommand,
	}
	return cmd
}

func runRangeCommand(cmd *cobra.Command, args []string) error {
	start, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid start %q: %w", args[0], err)
	}

	return runBulk(cmd, func(ctx context.Context, o *bulk.Orchestrator, a *app) (bulk.Summary, error) {
		end := bulk.AutoEnd(a.cfg.Bulk.EndBuffer, a.cfg.Bulk.HardCap)
		if len(args) == 2 {
			end, err = strconv.Atoi(args[1])
			if err != nil {
				return bulk.Summary{}, fmt.Errorf("invalid end %q: %w", args[1], err)
			}
		}
		return o.Run(ctx, start, end)
	})
}
