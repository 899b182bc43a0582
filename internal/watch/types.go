// Package watch defines the core types and interfaces for the page change
// detection pipeline, along with the Runner that executes one full pass.
package watch

import "time"

// Source is one tracked external page. Names are unique and act as the
// source identity across the fingerprint index, snapshots and change log.
type Source struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// SourceStatus is the terminal state of one source within one run.
type SourceStatus string

// Terminal source states recorded in run stats and logs.
const (
	StatusUnchanged SourceStatus = "unchanged"
	StatusChanged   SourceStatus = "changed"
	StatusFailed    SourceStatus = "failed"
)

// ChangeRecord describes one detected change. Records are kept newest first
// in the change log and rendered onto the landing page.
type ChangeRecord struct {
	TS      time.Time `json:"ts"`
	Title   string    `json:"title"`
	Path    string    `json:"path"`
	Summary string    `json:"summary"`
}

// RunStats aggregates per-source outcomes for one pipeline pass.
type RunStats struct {
	Checked   int
	Changed   int
	Unchanged int
	Failed    int
}

// FallbackSummary is recorded whenever the synopsis step is disabled,
// unconfigured, or fails. Summarization is best effort and must never block
// archiving or logging.
const FallbackSummary = "(summary unavailable)"

// Prepend inserts rec at the front of log and truncates to cap entries,
// dropping the oldest. The newest-first invariant is preserved because
// records are only ever inserted at index zero.
func Prepend(log []ChangeRecord, rec ChangeRecord, cap int) []ChangeRecord {
	out := make([]ChangeRecord, 0, len(log)+1)
	out = append(out, rec)
	out = append(out, log...)
	if cap > 0 && len(out) > cap {
		out = out[:cap]
	}
	return out
}
