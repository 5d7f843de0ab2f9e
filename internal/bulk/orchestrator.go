package bulk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kasunw/tripitaka-harvester/internal/canon"
	"github.com/kasunw/tripitaka-harvester/internal/fetch"
	"github.com/kasunw/tripitaka-harvester/internal/metrics"
	"github.com/kasunw/tripitaka-harvester/internal/scrape"
)

// Fetcher resolves a sutta number to page HTML. Satisfied by
// fetch.Coordinator.
type Fetcher interface {
	Fetch(ctx context.Context, id int) (fetch.Page, error)
	URLFor(id int) string
}

// Extractor pulls title and per-language text out of fetched HTML.
type Extractor interface {
	Extract(html, pageURL string) (scrape.Extraction, error)
}

// Validator judges extracted content quality.
type Validator interface {
	Validate(sinhala, pali, title string) scrape.Verdict
}

// Deps are the pipeline stages the orchestrator drives.
type Deps struct {
	Fetcher   Fetcher
	Extractor Extractor
	Validator Validator
	Logger    *zap.Logger
}

// Options tune a bulk run.
type Options struct {
	OutputDir       string
	BatchSize       int
	Workers         int
	RatePerSecond   float64
	CheckpointEvery int
	// SkipInvalid drops records the validator rejects instead of persisting
	// them with is_valid_content=false.
	SkipInvalid bool
	Resume      bool
	EndBuffer   int
	HardCap     int
}

// Summary reports what a run accomplished.
type Summary struct {
	Attempted int
	Scraped   int
	Failed    int
	Skipped   int
	Batches   int
	Duration  time.Duration
}

// PerMinute returns the attempted-IDs-per-minute rate for the run.
func (s Summary) PerMinute() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Attempted) / s.Duration.Minutes()
}

func (s *Summary) add(other Summary) {
	s.Attempted += other.Attempted
	s.Scraped += other.Scraped
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.Batches += other.Batches
	s.Duration += other.Duration
}

// Orchestrator walks a sutta number range through fetch, extract, and
// validate stages with a bounded worker pool, persisting batches and
// progress as it goes.
type Orchestrator struct {
	deps    Deps
	opts    Options
	limiter *rate.Limiter
	sink    *BatchSink
	points  *CheckpointStore
	errlog  *ErrorLog
	runID   string
	log     *zap.Logger
}

// New wires an orchestrator rooted at opts.OutputDir. The rate limiter is
// shared across all workers, so RatePerSecond bounds aggregate request
// pressure regardless of worker count.
func New(deps Deps, opts Options) (*Orchestrator, error) {
	if deps.Fetcher == nil || deps.Extractor == nil || deps.Validator == nil {
		return nil, fmt.Errorf("fetcher, extractor, and validator are required")
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0, got %d", opts.BatchSize)
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("workers must be > 0, got %d", opts.Workers)
	}
	if opts.RatePerSecond <= 0 {
		return nil, fmt.Errorf("rate must be > 0, got %f", opts.RatePerSecond)
	}
	if opts.CheckpointEvery <= 0 {
		return nil, fmt.Errorf("checkpoint interval must be > 0, got %d", opts.CheckpointEvery)
	}
	sink, err := NewBatchSink(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Orchestrator{
		deps:    deps,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		sink:    sink,
		points:  NewCheckpointStore(opts.OutputDir),
		errlog:  NewErrorLog(opts.OutputDir),
		runID:   runID,
		log:     logger.With(zap.String("run_id", runID)),
	}, nil
}

// AutoEnd computes the default upper bound of a full-corpus run: the highest
// known sutta number plus a discovery buffer, clamped to the hard cap.
func AutoEnd(buffer, hardCap int) int {
	end := canon.MaxID() + buffer
	if end > hardCap {
		end = hardCap
	}
	return end
}

type outcome struct {
	id  int
	rec scrape.Record
	err error
}

// Run harvests every sutta number in [start, end]. Each attempted ID lands
// exactly once: either as a record in a batch file, in the error log, or
// counted as skipped under SkipInvalid. On cancellation the partial batch is
// flushed and the checkpoint saved before returning.
func (o *Orchestrator) Run(ctx context.Context, start, end int) (Summary, error) {
	if start <= 0 || end < start {
		return Summary{}, fmt.Errorf("invalid range [%d, %d]", start, end)
	}

	began := time.Now()
	progress := Progress{}
	if o.opts.Resume {
		prev, ok, err := o.points.Load()
		if err != nil {
			return Summary{}, err
		}
		if ok {
			progress = prev
			o.log.Info("resuming from checkpoint",
				zap.Int("scraped_count", prev.ScrapedCount),
				zap.Int("error_count", prev.ErrorCount))
		}
	}
	if progress.StartTime == nil {
		progress.StartTime = &began
	}

	o.log.Info("bulk run starting",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("workers", o.opts.Workers),
		zap.Int("batch_size", o.opts.BatchSize),
		zap.Float64("rate_per_second", o.opts.RatePerSecond),
		zap.Bool("skip_invalid", o.opts.SkipInvalid))

	// File numbering continues past whatever is already on disk, so a
	// resumed run never overwrites an earlier batch file.
	batchIndex, err := o.sink.NextIndex()
	if err != nil {
		return Summary{}, err
	}

	var (
		summary         Summary
		pending         []scrape.Record
		sinceCheckpoint int
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		path, err := o.sink.WriteBatch(batchIndex, pending)
		if err != nil {
			return err
		}
		o.log.Info("batch written",
			zap.String("file", path),
			zap.Int("records", len(pending)))
		summary.Batches++
		batchIndex++
		pending = pending[:0]
		return nil
	}

	for lo := start; lo <= end && ctx.Err() == nil; lo += o.opts.BatchSize {
		hi := lo + o.opts.BatchSize - 1
		if hi > end {
			hi = end
		}
		for res := range o.runBatch(ctx, lo, hi) {
			if res.err != nil && (errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded)) {
				// In-flight work torn down by cancellation is not a page
				// failure; it was never attempted.
				continue
			}
			summary.Attempted++
			switch {
			case res.err != nil:
				summary.Failed++
				progress.ErrorCount++
				metrics.FetchErrors.Inc()
				o.log.Warn("sutta failed",
					zap.Int("sutta", res.id),
					zap.Error(res.err))
				if lerr := o.errlog.Append(ErrorRecord{
					URL:       o.deps.Fetcher.URLFor(res.id),
					Error:     res.err.Error(),
					Timestamp: time.Now().UTC(),
				}); lerr != nil {
					o.log.Error("error log append failed", zap.Error(lerr))
				}
			case !res.rec.IsValidContent && o.opts.SkipInvalid:
				summary.Skipped++
				metrics.PagesRejected.Inc()
				o.log.Debug("invalid content skipped", zap.Int("sutta", res.id))
			default:
				pending = append(pending, res.rec)
				progress.ScrapedCount++
				summary.Scraped++
				metrics.PagesScraped.Inc()
			}

			sinceCheckpoint++
			if sinceCheckpoint >= o.opts.CheckpointEvery {
				progress.LastUpdate = time.Now().UTC()
				if err := o.points.Save(progress); err != nil {
					o.log.Error("checkpoint save failed", zap.Error(err))
				}
				sinceCheckpoint = 0
			}
			if len(pending) >= o.opts.BatchSize {
				if err := flush(); err != nil {
					return summary, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return summary, err
	}
	progress.LastUpdate = time.Now().UTC()
	if err := o.points.Save(progress); err != nil {
		o.log.Error("final checkpoint save failed", zap.Error(err))
	}

	summary.Duration = time.Since(began)
	o.log.Info("bulk run finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("scraped", summary.Scraped),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("batches", summary.Batches),
		zap.Duration("duration", summary.Duration),
		zap.Float64("per_minute", summary.PerMinute()))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// runBatch fans [lo, hi] out over the worker pool and returns a channel of
// outcomes in completion order, closed when the batch drains.
func (o *Orchestrator) runBatch(ctx context.Context, lo, hi int) <-chan outcome {
	jobs := make(chan int)
	results := make(chan outcome)

	workers := o.opts.Workers
	if span := hi - lo + 1; workers > span {
		workers = span
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				rec, err := o.processOne(ctx, id)
				results <- outcome{id: id, rec: rec, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for id := lo; id <= hi; id++ {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// processOne runs the full pipeline for one sutta number.
func (o *Orchestrator) processOne(ctx context.Context, id int) (scrape.Record, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return scrape.Record{}, err
	}

	page, err := o.deps.Fetcher.Fetch(ctx, id)
	if err != nil {
		return scrape.Record{}, fmt.Errorf("fetch sutta %d: %w", id, err)
	}

	ext, err := o.deps.Extractor.Extract(page.HTML, page.URL)
	if err != nil {
		return scrape.Record{}, fmt.Errorf("extract sutta %d: %w", id, err)
	}
	if ext.Empty() {
		return scrape.Record{}, fmt.Errorf("sutta %d: no content extracted", id)
	}

	verdict := o.deps.Validator.Validate(ext.Sinhala, ext.Pali, ext.Title)

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
	return rec, nil
}

// RunCollection harvests one Nikaya into its own subdirectory with fresh
// batch numbering, checkpoint, and error log.
func (o *Orchestrator) RunCollection(ctx context.Context, key string) (Summary, error) {
	col, ok := canon.ByKey(key)
	if !ok {
		return Summary{}, fmt.Errorf("unknown collection %q (known: %v)", key, canon.Keys())
	}

	child, err := o.forSubdir(col.Key)
	if err != nil {
		return Summary{}, err
	}
	child.log.Info("collection run",
		zap.String("collection", col.Key),
		zap.String("name", col.NameEN),
		zap.Int("start", col.StartID),
		zap.Int("end", col.EndID),
		zap.Int("size", col.Size()))
	return child.Run(ctx, col.StartID, col.EndID)
}

// RunAll harvests the named collections in order, or every collection in the
// traditional order when keys is empty. A failed collection is logged and
// the run moves on; cancellation stops the sequence.
func (o *Orchestrator) RunAll(ctx context.Context, keys []string) (Summary, error) {
	if len(keys) == 0 {
		keys = canon.DefaultOrder()
	}

	var total Summary
	var firstErr error
	for _, key := range keys {
		s, err := o.RunCollection(ctx, key)
		total.add(s)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return total, err
			}
			o.log.Error("collection failed, continuing",
				zap.String("collection", key),
				zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("collection %s: %w", key, err)
			}
		}
	}
	return total, firstErr
}

// forSubdir clones the orchestrator with stores rooted in a subdirectory of
// the output dir. Pipeline stages and the rate limiter are shared so the
// aggregate request bound holds across collections.
func (o *Orchestrator) forSubdir(name string) (*Orchestrator, error) {
	dir := filepath.Join(o.opts.OutputDir, name)
	sink, err := NewBatchSink(dir)
	if err != nil {
		return nil, err
	}
	child := *o
	child.sink = sink
	child.points = NewCheckpointStore(dir)
	child.errlog = NewErrorLog(dir)
	child.log = o.log.With(zap.String("collection", name))
	return &child, nil
}
