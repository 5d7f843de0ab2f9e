// Package scrape defines the page record model, the HTML extractor, and the
// content-quality validator shared across subsystems.
package scrape

import (
	"strings"
	"time"

	"github.com/kasunw/tripitaka-harvester/internal/canon"
)

// Quality labels the validator's confidence in a record.
type Quality string

// Quality values embedded in persisted records.
const (
	QualityValid    Quality = "valid"
	QualityInvalid  Quality = "invalid"
	QualityFallback Quality = "fallback"
	QualityError    Quality = "error"
)

// Verdict is the validator's accept/reject decision plus a quality label.
type Verdict struct {
	Acceptable bool
	Quality    Quality
}

// Content carries the two text fields extracted from a sutta page.
type Content struct {
	Sinhala string `json:"sinhala"`
	Pali    string `json:"pali"`
}

// WordCounts records whitespace-token counts per language.
type WordCounts struct {
	Sinhala int `json:"sinhala"`
	Pali    int `json:"pali"`
}

// Record is the persisted form of one scraped sutta. Batch files are ordered
// sequences of these.
type Record struct {
	URL            string                `json:"url"`
	Title          string                `json:"title"`
	Content        Content               `json:"content"`
	IsValidContent bool                  `json:"is_valid_content"`
	ContentQuality Quality               `json:"content_quality"`
	SuttaNumber    int                   `json:"sutta_number"`
	ScrapedAt      time.Time             `json:"scraped_at"`
	WordCounts     WordCounts            `json:"word_counts"`
	Nikaya         *canon.CollectionInfo `json:"nikaya"`
	FetchMethod    string                `json:"fetch_method,omitempty"`
}

// RecordForError is the persisted form of a page whose pipeline failed:
// no content, quality "error". Bulk runs route failures to the error log
// instead; this shape is for single-page output where a record is still
// expected.
func RecordForError(pageURL string, id int) Record {
	rec := Record{
		URL:            pageURL,
		ContentQuality: QualityError,
		SuttaNumber:    id,
		ScrapedAt:      time.Now().UTC(),
	}
	if col, ok := canon.Lookup(id); ok {
		rec.Nikaya = &col
	}
	return rec
}

// Extraction is the extractor's output for one rendered page.
type Extraction struct {
	Title   string
	Sinhala string
	Pali    string
}

// Empty reports whether no text was recovered in either language.
func (e Extraction) Empty() bool {
	return strings.TrimSpace(e.Sinhala) == "" && strings.TrimSpace(e.Pali) == ""
}

// CountWords returns the number of whitespace-separated tokens in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
