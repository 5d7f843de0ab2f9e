// Package fetch implements the fetch strategies for sutta pages and the
// coordinator that chains them into an ordered fallback sequence.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fetch method labels recorded on pages and persisted records.
const (
	MethodRendered = "rendered"
	MethodStatic   = "static"
)

// ErrAllStrategiesFailed indicates every strategy in the chain failed for an
// identifier.
var ErrAllStrategiesFailed = errors.New("all fetch strategies failed")

// ErrSessionUnavailable indicates the browser session could not be created
// or recreated within its retry budget.
var ErrSessionUnavailable = errors.New("browser session unavailable")

// Page is the normalized result of fetching one sutta identifier.
type Page struct {
	SuttaID   int
	URL       string
	HTML      string
	Method    string
	FetchedAt time.Time
	Duration  time.Duration
}

// Strategy fetches raw content for one identifier. Implementations wrap
// their own timeout and retry behavior.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, id int) (Page, error)
}

// SuttaURL builds the canonical page URL for a sutta number.
func SuttaURL(baseURL string, id int) string {
	return fmt.Sprintf("%s/sutta/%d", baseURL, id)
}
