package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagewatch/pagewatch/internal/watch"
)

const latestName = "latest.html"

// Snapshots stores raw page content under root, one directory per source:
// a dated archive entry per day with a change plus one "latest" baseline.
type Snapshots struct {
	root string
}

// NewSnapshots creates the snapshot store rooted at dir.
func NewSnapshots(dir string) (*Snapshots, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return &Snapshots{root: dir}, nil
}

// ReadLatest returns the current diff baseline for a source. A source with
// no baseline yet yields empty content: its first change diffs against
// nothing and the whole page shows as additions.
func (s *Snapshots) ReadLatest(name string) ([]byte, error) {
	path, err := s.sourcePath(name, latestName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &watch.PersistError{Op: "read snapshot", Path: path, Err: err}
	}
	return data, nil
}

// Write stores content as the dated archive entry for day, then overwrites
// the "latest" baseline. The archive write goes first so a crash in between
// keeps the historical copy even if the baseline is stale.
func (s *Snapshots) Write(name string, day string, content []byte) error {
	dated, err := s.sourcePath(name, day+".html")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dated), 0o750); err != nil {
		return &watch.PersistError{Op: "create snapshot dir", Path: filepath.Dir(dated), Err: err}
	}
	if err := os.WriteFile(dated, content, 0o600); err != nil {
		return &watch.PersistError{Op: "write snapshot", Path: dated, Err: err}
	}
	latest, err := s.sourcePath(name, latestName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(latest, content, 0o600); err != nil {
		return &watch.PersistError{Op: "write snapshot", Path: latest, Err: err}
	}
	return nil
}

// sourcePath joins root/name/file and rejects names that would escape the
// snapshot root.
func (s *Snapshots) sourcePath(name, file string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("source name is required")
	}
	full := filepath.Join(s.root, name, file)
	cleanRoot := filepath.Clean(s.root)
	if !strings.HasPrefix(filepath.Clean(full), cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected for source %q", name)
	}
	return full, nil
}
