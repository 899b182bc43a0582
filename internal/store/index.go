// Package store persists the pipeline's durable state: the fingerprint
// index, the raw snapshot archive and the bounded change log. All writers
// go through a temp-file rename so a crash never leaves a half-written file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagewatch/pagewatch/internal/watch"
)

// Index maps source names to the hex digest of their most recently seen
// content. A source absent from the index has never been processed.
type Index struct {
	path string
}

// NewIndex returns an Index persisted at path.
func NewIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	return &Index{path: path}, nil
}

// Load reads the index from disk. A missing file yields an empty index.
func (s *Index) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, &watch.PersistError{Op: "read index", Path: s.path, Err: err}
	}
	index := map[string]string{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, &watch.PersistError{Op: "decode index", Path: s.path, Err: err}
	}
	return index, nil
}

// Save writes the index as indented JSON so the file stays hand-readable.
func (s *Index) Save(index map[string]string) error {
	payload, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return &watch.PersistError{Op: "encode index", Path: s.path, Err: err}
	}
	return writeFileAtomic(s.path, payload)
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &watch.PersistError{Op: "create dir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return &watch.PersistError{Op: "create temp", Path: path, Err: err}
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &watch.PersistError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &watch.PersistError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &watch.PersistError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
