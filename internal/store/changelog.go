package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pagewatch/pagewatch/internal/watch"
)

// ChangeLog persists the newest-first list of change records as JSON.
// Ordering and truncation are the caller's concern (watch.Prepend); the
// store only round-trips the slice.
type ChangeLog struct {
	path string
}

// NewChangeLog returns a ChangeLog persisted at path.
func NewChangeLog(path string) (*ChangeLog, error) {
	if path == "" {
		return nil, fmt.Errorf("change log path is required")
	}
	return &ChangeLog{path: path}, nil
}

// Load reads the change log. A missing file yields an empty log.
func (s *ChangeLog) Load() ([]watch.ChangeRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &watch.PersistError{Op: "read change log", Path: s.path, Err: err}
	}
	var records []watch.ChangeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &watch.PersistError{Op: "decode change log", Path: s.path, Err: err}
	}
	return records, nil
}

// Save writes the full record list, newest first.
func (s *ChangeLog) Save(records []watch.ChangeRecord) error {
	if records == nil {
		records = []watch.ChangeRecord{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &watch.PersistError{Op: "encode change log", Path: s.path, Err: err}
	}
	return writeFileAtomic(s.path, payload)
}
