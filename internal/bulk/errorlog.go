package bulk

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const errorLogFileName = "error_log.jsonl"

// ErrorRecord is one failed identifier in the durable error log.
type ErrorRecord struct {
	URL       string    `json:"url"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorLog appends failure records to a JSONL file, one object per line.
// Appends are atomic at the line level, so the log never needs the
// read-everything-then-rewrite cycle under concurrent writers.
type ErrorLog struct {
	path string
}

// NewErrorLog roots the log inside dir.
func NewErrorLog(dir string) *ErrorLog {
	return &ErrorLog{path: filepath.Join(dir, errorLogFileName)}
}

// Path returns the log file location.
func (l *ErrorLog) Path() string {
	return l.path
}

// Append writes one record to the end of the log.
func (l *ErrorLog) Append(rec ErrorRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal error record: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open error log %s: %w", l.path, err)
	}
	defer f.Close() //nolint:errcheck // write error checked below
	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("append error log %s: %w", l.path, err)
	}
	return nil
}

// Read returns the full log history in append order.
func (l *ErrorLog) Read() ([]ErrorRecord, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open error log %s: %w", l.path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	var records []ErrorRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec ErrorRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode error log line: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan error log %s: %w", l.path, err)
	}
	return records, nil
}
