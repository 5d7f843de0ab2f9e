// Package bulk implements the ingestion orchestrator: range enumeration,
// batched worker pools, durable progress, and batch persistence.
package bulk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// progressFileName matches the original layout inside the output directory.
const progressFileName = "scraping_progress.json"

// Progress carries the aggregate run counters. The checkpoint records counts
// only, not the set of completed identifiers: restoring it resumes the
// progress report, not the work itself. Re-running the same range re-fetches
// everything unless the caller narrows the range.
type Progress struct {
	ScrapedCount int        `json:"scraped_count"`
	ErrorCount   int        `json:"error_count"`
	LastUpdate   time.Time  `json:"last_update"`
	StartTime    *time.Time `json:"start_time"`
}

// CheckpointStore persists Progress to a single file, overwritten on each
// save.
type CheckpointStore struct {
	path string
}

// NewCheckpointStore roots the checkpoint inside dir.
func NewCheckpointStore(dir string) *CheckpointStore {
	return &CheckpointStore{path: filepath.Join(dir, progressFileName)}
}

// Path returns the checkpoint file location.
func (c *CheckpointStore) Path() string {
	return c.path
}

// Save overwrites the checkpoint with the given snapshot.
func (c *CheckpointStore) Save(p Progress) error {
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := os.WriteFile(c.path, payload, 0o600); err != nil {
		return fmt.Errorf("write progress %s: %w", c.path, err)
	}
	return nil
}

// Load reads the last saved snapshot. The second return is false when no
// checkpoint exists yet.
func (c *CheckpointStore) Load() (Progress, bool, error) {
	payload, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, fmt.Errorf("read progress %s: %w", c.path, err)
	}
	var p Progress
	if err := json.Unmarshal(payload, &p); err != nil {
		return Progress{}, false, fmt.Errorf("decode progress %s: %w", c.path, err)
	}
	return p, true, nil
}
