package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Selector cascades reflecting the observed structure of tripitaka.online.
// Each list is tried in order; the first selector yielding text wins.
var (
	titleSelectors = []string{
		"h1", "h2", ".title", ".sutta-title",
		"[class*='title']", "[class*='heading']",
	}
	sinhalaSelectors = []string{
		"div[lang='si']", "div[lang='sin']", ".sinhala",
		".si-text", "[class*='sinhala']", "[lang='si']",
	}
	paliSelectors = []string{
		"div[lang='pi']", "div[lang='pali']", ".pali",
		".pi-text", "[class*='pali']", "[lang='pi']",
	}
	contentSelectors = []string{
		".content", ".main-content", ".text-content",
		".sutta-content", ".body", "main", "article",
		"[class*='content']", "[class*='text']",
	}
)

// minContainerChars filters out trivially small generic containers.
const minContainerChars = 100

// Extractor pulls a title and the Sinhala/Pali text fields out of rendered
// HTML. It never fails outright on missing content; callers decide what an
// empty Extraction means.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses html and returns the title plus both language texts.
// pageURL is only used as the document base for the readability fallback.
func (e *Extractor) Extract(html, pageURL string) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse html: %w", err)
	}

	out := Extraction{
		Title:   e.extractTitle(doc),
		Sinhala: firstSelectorText(doc, sinhalaSelectors),
		Pali:    firstSelectorText(doc, paliSelectors),
	}

	if out.Empty() {
		e.extractFromContainers(doc, &out)
	}
	if out.Empty() {
		e.extractWithReadability(html, pageURL, &out)
	}
	return out, nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if text := strings.TrimSpace(content); text != "" {
			return text
		}
	}
	if text := strings.TrimSpace(doc.Find("title").First().Text()); text != "" {
		return text
	}
	return "Untitled"
}

// extractFromContainers scans generic content containers and classifies each
// by script: Sinhala codepoints mark the translation, anything else is
// treated as romanized Pali.
func (e *Extractor) extractFromContainers(doc *goquery.Document, out *Extraction) {
	for _, sel := range contentSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := normalizeSpace(s.Text())
			if len([]rune(text)) < minContainerChars {
				return true
			}
			if containsSinhalaScript(text) {
				out.Sinhala = text
			} else {
				out.Pali = text
			}
			return false
		})
		if !out.Empty() {
			return
		}
	}
}

// extractWithReadability is the last resort for markup the selector cascade
// does not recognize at all.
func (e *Extractor) extractWithReadability(html, pageURL string, out *Extraction) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return
	}
	text := normalizeSpace(article.TextContent)
	if len([]rune(text)) < minContainerChars {
		return
	}
	if containsSinhalaScript(text) {
		out.Sinhala = text
	} else {
		out.Pali = text
	}
	if out.Title == "" || out.Title == "Untitled" {
		if title := strings.TrimSpace(article.Title); title != "" {
			out.Title = title
		}
	}
}

func firstSelectorText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		parts := make([]string, 0, nodes.Length())
		nodes.Each(func(_ int, s *goquery.Selection) {
			if text := normalizeSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if joined := strings.Join(parts, " "); joined != "" {
			return joined
		}
	}
	return ""
}

// containsSinhalaScript reports whether s has any codepoint in the Sinhala
// Unicode block (U+0D80..U+0DFF).
func containsSinhalaScript(s string) bool {
	for _, r := range s {
		if r >= 0x0D80 && r <= 0x0DFF {
			return true
		}
	}
	return false
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
