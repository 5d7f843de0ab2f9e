// Package metrics registers the Prometheus instruments for the harvester.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesScraped tracks records accepted into batch files.
	PagesScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_pages_scraped_total",
		Help: "The total number of sutta pages scraped and persisted.",
	})
	// PagesRejected tracks records the validator turned away.
	PagesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_pages_rejected_total",
		Help: "The total number of pages rejected by content validation.",
	})
	// FetchErrors tracks identifiers that exhausted the strategy chain.
	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_fetch_errors_total",
		Help: "The total number of fetches that failed every strategy.",
	})
	// StaticFallbacks tracks fetches served by the static path after the
	// rendered path failed.
	StaticFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_static_fallbacks_total",
		Help: "The total number of fetches that fell back to plain HTTP.",
	})
	// BrowserRestarts tracks teardown-and-recreate cycles of the rendering
	// session.
	BrowserRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_browser_restarts_total",
		Help: "The total number of headless browser session restarts.",
	})
	// BatchesWritten tracks flushed batch files.
	BatchesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_batches_written_total",
		Help: "The total number of batch files written.",
	})
	// FetchDuration observes end-to-end fetch latency per strategy.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harvester_fetch_duration_seconds",
		Help:    "Fetch latency by strategy.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"strategy"})
)
