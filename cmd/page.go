package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kasunw/tripitaka-harvester/internal/canon"
	"github.com/kasunw/tripitaka-harvester/internal/scrape"
)

// newPageCmd creates the 'page' subcommand, a single-sutta probe useful for
// spot checks and tuning the validator thresholds.
func newPageCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "page <sutta-number>",
		Short: "Fetch, extract, and validate a single sutta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid sutta number %q", args[0])
			}
			return runPageCommand(cmd, id, outFile)
		},
	}
	cmd.Flags().StringVar(&outFile, "out", "", "write the record to a file instead of stdout")
	return cmd
}

func runPageCommand(cmd *cobra.Command, id int, outFile string) error {
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
	defer p.close(context.Background())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	page, err := p.coordinator.Fetch(ctx, id)
	if err != nil {
		// Still emit a record so the output shape is uniform for consumers.
		if werr := emitRecord(cmd, scrape.RecordForError(p.coordinator.URLFor(id), id), outFile); werr != nil {
			return werr
		}
		return fmt.Errorf("fetch sutta %d: %w", id, err)
	}
	ext, err := p.extractor.Extract(page.HTML, page.URL)
	if err != nil {
		rec := scrape.RecordForError(page.URL, id)
		rec.FetchMethod = page.Method
		if werr := emitRecord(cmd, rec, outFile); werr != nil {
			return werr
		}
		return fmt.Errorf("extract sutta %d: %w", id, err)
	}
	verdict := p.validator.Validate(ext.Sinhala, ext.Pali, ext.Title)

	rec := scrape.Record{
		URL:            page.URL,
		Title:          ext.Title,
		Content:        scrape.Content{Sinhala: ext.Sinhala, Pali: ext.Pali},
		IsValidContent: verdict.Acceptable,
		ContentQuality: verdict.Quality,
		SuttaNumber:    id,
		ScrapedAt:      time.Now().UTC(),
		WordCounts: scrape.WordCounts{
			Sinhala: scrape.CountWords(ext.Sinhala),
			Pali:    scrape.CountWords(ext.Pali),
		},
		FetchMethod: page.Method,
	}
	if col, ok := canon.Lookup(id); ok {
		rec.Nikaya = &col
	}

	return emitRecord(cmd, rec, outFile)
}

func emitRecord(cmd *cobra.Command, rec scrape.Record, outFile string) error {
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if outFile != "" {
		return os.WriteFile(outFile, append(payload, '\n'), 0o600)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
