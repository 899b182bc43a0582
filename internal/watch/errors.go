package watch

import "fmt"

// FetchError reports a transport failure, timeout, or non-success status
// while retrieving a page. It is fatal for the affected source this run:
// no state is committed for that source and the run moves on.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SummarizeError reports a failed or unconfigured synopsis call. Callers
// substitute FallbackSummary and continue; it never aborts a run.
type SummarizeError struct {
	Err error
}

func (e *SummarizeError) Error() string { return fmt.Sprintf("summarize: %v", e.Err) }

func (e *SummarizeError) Unwrap() error { return e.Err }

// PersistError reports a disk write or read failure. It is fatal for the
// run: continuing would leave the index, log and artifacts inconsistent.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
