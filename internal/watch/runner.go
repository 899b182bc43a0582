package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pagewatch/pagewatch/internal/metrics"
)

// Config controls Runner behavior.
type Config struct {
	Sources      []Source
	RetentionCap int
}

// Runner executes one sequential pass of the change detection pipeline over
// every configured source. It is the only writer of the fingerprint index,
// snapshot archive and change log; overlapping runs against the same storage
// are excluded by the external scheduler, not by the Runner.
type Runner struct {
	cfg        Config
	fetcher    Fetcher
	hasher     Hasher
	index      IndexStore
	snapshots  SnapshotStore
	diffs      DiffArchiver
	summarizer Summarizer
	changelog  ChangeLogStore
	page       PageRenderer
	clock      Clock
	ids        IDGenerator
	logger     *zap.Logger
}

// NewRunner constructs a Runner.
func NewRunner(
	cfg Config,
	fetcher Fetcher,
	hasher Hasher,
	index IndexStore,
	snapshots SnapshotStore,
	diffs DiffArchiver,
	summarizer Summarizer,
	changelog ChangeLogStore,
	page PageRenderer,
	clock Clock,
	ids IDGenerator,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetentionCap <= 0 {
		cfg.RetentionCap = 200
	}
	return &Runner{
		cfg:        cfg,
		fetcher:    fetcher,
		hasher:     hasher,
		index:      index,
		snapshots:  snapshots,
		diffs:      diffs,
		summarizer: summarizer,
		changelog:  changelog,
		page:       page,
		clock:      clock,
		ids:        ids,
		logger:     logger,
	}
}

// Run processes all sources once. Fetch failures are isolated per source;
// persistence failures abort the run. The landing page is rebuilt on every
// completed run, even when nothing changed.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	start := r.clock.Now()
	logger := r.logger
	if r.ids != nil {
		if runID, err := r.ids.NewID(); err == nil {
			logger = logger.With(zap.String("run_id", runID))
		}
	}

	index, err := r.index.Load()
	if err != nil {
		return RunStats{}, fmt.Errorf("load fingerprint index: %w", err)
	}
	records, err := r.changelog.Load()
	if err != nil {
		return RunStats{}, fmt.Errorf("load change log: %w", err)
	}

	var stats RunStats
	for _, src := range r.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("run canceled: %w", err)
		}
		stats.Checked++

		status, err := r.processSource(ctx, logger, src, index, &records)
		if err != nil {
			var fe *FetchError
			if errors.As(err, &fe) {
				stats.Failed++
				metrics.ObserveSource(src.Name, string(StatusFailed))
				logger.Error("Source fetch failed; skipping",
					zap.String("source", src.Name), zap.Error(err))
				continue
			}
			// Persistence failure: downstream state would diverge, stop here.
			return stats, err
		}

		metrics.ObserveSource(src.Name, string(status))
		switch status {
		case StatusChanged:
			stats.Changed++
		case StatusUnchanged:
			stats.Unchanged++
		}
	}

	if err := r.page.Rebuild(records); err != nil {
		return stats, fmt.Errorf("rebuild landing page: %w", err)
	}

	metrics.ObserveRunDuration(r.clock.Now().Sub(start))
	logger.Info("Run complete",
		zap.Int("checked", stats.Checked),
		zap.Int("changed", stats.Changed),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// processSource walks one source through the per-run state machine. The
// index and change log are only mutated and persisted after the source's
// snapshot and diff artifacts are durably on disk.
func (r *Runner) processSource(
	ctx context.Context,
	logger *zap.Logger,
	src Source,
	index map[string]string,
	records *[]ChangeRecord,
) (SourceStatus, error) {
	content, err := r.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return StatusFailed, err
	}

	digest, err := r.hasher.Hash(content)
	if err != nil {
		return StatusFailed, fmt.Errorf("hash %s: %w", src.Name, err)
	}
	prevDigest := index[src.Name]
	logger.Debug("Fetched source",
		zap.String("source", src.Name),
		zap.String("digest", digest),
		zap.String("previous", prevDigest),
	)
	if prevDigest == digest {
		return StatusUnchanged, nil
	}

	// Missing baseline means first observation: diff against empty content.
	previous, err := r.snapshots.ReadLatest(src.Name)
	if err != nil {
		return StatusFailed, err
	}

	now := r.clock.Now().UTC()
	if err := r.snapshots.Write(src.Name, now.Format(time.DateOnly), content); err != nil {
		return StatusFailed, err
	}

	diffPath, diffText, err := r.diffs.Archive(src.Name, now, previous, content)
	if err != nil {
		return StatusFailed, err
	}
	logger.Debug("Change archived",
		zap.String("source", src.Name),
		zap.String("diff", diffPath),
	)

	summaryText, err := r.summarizer.Summarize(ctx, diffText)
	if err != nil {
		metrics.ObserveSummaryFallback()
		logger.Warn("Summarization failed; using fallback",
			zap.String("source", src.Name), zap.Error(err))
		summaryText = FallbackSummary
	}

	rec := ChangeRecord{
		TS:      now.Truncate(time.Second),
		Title:   src.Name,
		Path:    diffPath,
		Summary: summaryText,
	}
	*records = Prepend(*records, rec, r.cfg.RetentionCap)
	index[src.Name] = digest

	// Commit bookkeeping per source so an abort later in the run cannot
	// lose an already archived change.
	if err := r.changelog.Save(*records); err != nil {
		return StatusFailed, err
	}
	if err := r.index.Save(index); err != nil {
		return StatusFailed, err
	}
	return StatusChanged, nil
}
