package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kasunw/tripitaka-harvester/internal/bulk"
	"github.com/kasunw/tripitaka-harvester/internal/canon"
)

// newCollectionCmd creates the 'collection' subcommand, which harvests one
// Nikaya into its own subdirectory.
func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "collection <key>",
		Short:     "Harvest a single Nikaya collection",
		Long:      `Harvests the full sutta range of one Nikaya into a subdirectory of the output dir, with its own batch numbering, checkpoint, and error log.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: canon.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd, func(ctx context.Context, o *bulk.Orchestrator, _ *app) (bulk.Summary, error) {
				return o.RunCollection(ctx, args[0])
			})
		},
	}
	return cmd
}

// newAllCmd creates the 'all' subcommand, which harvests every collection
// in the traditional order.
func newAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all [keys...]",
		Short: "Harvest all Nikaya collections in order",
		Long: `Harvests each named collection in sequence, or every collection in the
traditional order when none are named. A collection that fails is logged and
the run continues with the next one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd, func(ctx context.Context, o *bulk.Orchestrator, _ *app) (bulk.Summary, error) {
				return o.RunAll(ctx, args)
			})
		},
	}
	return cmd
}

// newCollectionsCmd creates the 'collections' subcommand, which lists the
// known Nikaya ranges.
func newCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the known Nikaya collections and their sutta ranges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tRANGE\tSUTTAS")
			for _, col := range canon.Ranges() {
				fmt.Fprintf(w, "%s\t%s\t%d-%d\t%d\n", col.Key, col.NameEN, col.StartID, col.EndID, col.Size())
			}
			fmt.Fprintf(w, "\ttotal\t%d-%d\t%d\n", canon.MinID(), canon.MaxID(), canon.TotalSuttas())
			return w.Flush()
		},
	}
}
