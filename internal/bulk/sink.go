package bulk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasunw/tripitaka-harvester/internal/metrics"
	"github.com/kasunw/tripitaka-harvester/internal/scrape"
)

// BatchSink writes completed batches as deterministically named JSON files
// inside one output directory.
type BatchSink struct {
	dir string
}

// NewBatchSink creates dir if needed and returns a sink rooted there.
func NewBatchSink(dir string) (*BatchSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &BatchSink{dir: dir}, nil
}

// Dir returns the sink's output directory.
func (s *BatchSink) Dir() string {
	return s.dir
}

// NextIndex scans the output directory and returns one past the highest
// existing batch number. Deriving the index from disk rather than from run
// counters means a resumed run can never overwrite an earlier batch file,
// including a partial final one.
func (s *BatchSink) NextIndex() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "suttas_batch_*.json"))
	if err != nil {
		return 0, fmt.Errorf("scan batches in %s: %w", s.dir, err)
	}
	next := 1
	for _, m := range matches {
		var n int
		if _, err := fmt.Sscanf(filepath.Base(m), "suttas_batch_%d.json", &n); err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return next, nil
}

// BatchPath returns the file name for a 1-based batch index.
func (s *BatchSink) BatchPath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("suttas_batch_%04d.json", index))
}

// WriteBatch persists one batch of records in completion order and returns
// the file path. Empty batches are skipped.
func (s *BatchSink) WriteBatch(index int, records []scrape.Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal batch %d: %w", index, err)
	}
	target := s.BatchPath(index)
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return "", fmt.Errorf("write batch %s: %w", target, err)
	}
	metrics.BatchesWritten.Inc()
	return target, nil
}
