package watch

import (
	"context"
	"time"
)

// Fetcher retrieves the current content of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Hasher computes content fingerprints for change detection.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// IndexStore persists the fingerprint index (source name -> hex digest).
type IndexStore interface {
	Load() (map[string]string, error)
	Save(index map[string]string) error
}

// SnapshotStore persists raw page content per source.
type SnapshotStore interface {
	// ReadLatest returns the diff baseline for a source. A source that has
	// never been snapshotted yields empty content, not an error.
	ReadLatest(name string) ([]byte, error)
	// Write stores content as the dated archive entry for day, then as the
	// new "latest" baseline, in that order.
	Write(name string, day string, content []byte) error
}

// DiffArchiver renders and persists one diff document per detected change.
// It returns the artifact path recorded in the change log and the plain-text
// delta handed to the summarizer.
type DiffArchiver interface {
	Archive(name string, ts time.Time, previous, current []byte) (path string, diffText string, err error)
}

// Summarizer produces a short synopsis of a diff.
type Summarizer interface {
	Summarize(ctx context.Context, diffText string) (string, error)
}

// ChangeLogStore persists the bounded newest-first change log.
type ChangeLogStore interface {
	Load() ([]ChangeRecord, error)
	Save(records []ChangeRecord) error
}

// PageRenderer rebuilds the landing page from the current change log.
type PageRenderer interface {
	Rebuild(records []ChangeRecord) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run correlation IDs.
type IDGenerator interface {
	NewID() (string, error)
}
