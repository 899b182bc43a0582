package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagewatch/pagewatch/internal/clock/system"
	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/diff"
	"github.com/pagewatch/pagewatch/internal/fetch"
	"github.com/pagewatch/pagewatch/internal/hash/sha256"
	"github.com/pagewatch/pagewatch/internal/id/uuid"
	"github.com/pagewatch/pagewatch/internal/logging"
	"github.com/pagewatch/pagewatch/internal/metrics"
	"github.com/pagewatch/pagewatch/internal/render"
	"github.com/pagewatch/pagewatch/internal/store"
	"github.com/pagewatch/pagewatch/internal/summary"
	"github.com/pagewatch/pagewatch/internal/watch"
)

// apiKeyEnv supplies the summarizer credential. Its absence degrades the
// synopsis step to the fallback text; it never aborts a run.
const apiKeyEnv = "OPENAI_API_KEY"

// newRunCmd creates the 'run' subcommand, which executes one full pass of
// the change detection pipeline.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Check all sources once and publish any changes",
		Long: `Fetches every configured source, compares content fingerprints against
the stored index, archives snapshots and diffs for changed pages, and
rebuilds the landing page. Individual fetch failures are reported and
skipped; the run still exits zero (best-effort batch semantics).`,
		RunE: runRunCommand,
	}
}

func runRunCommand(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(debug || cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	runner, err := buildRunner(cfg, logger)
	if err != nil {
		return err
	}

	stats, err := runner.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	if stats.Failed > 0 {
		logger.Warn("Some sources failed to fetch", zap.Int("failed", stats.Failed))
	}

	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warn("Failed to write metrics textfile", zap.Error(err))
		}
	}
	return nil
}

func buildRunner(cfg config.Config, logger *zap.Logger) (*watch.Runner, error) {
	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger)

	index, err := store.NewIndex(cfg.Storage.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("init index store: %w", err)
	}
	snapshots, err := store.NewSnapshots(cfg.Storage.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("init snapshot store: %w", err)
	}
	changelog, err := store.NewChangeLog(cfg.Storage.LogPath)
	if err != nil {
		return nil, fmt.Errorf("init change log store: %w", err)
	}
	diffs, err := diff.NewArchiver(cfg.Storage.ChangesDir, logger)
	if err != nil {
		return nil, fmt.Errorf("init diff archiver: %w", err)
	}
	landing, err := render.NewLanding(filepath.Join(cfg.Storage.OutputDir, "index.html"), cfg.Log.LandingCount)
	if err != nil {
		return nil, fmt.Errorf("init landing renderer: %w", err)
	}

	return watch.NewRunner(
		watch.Config{
			Sources:      cfg.Sources,
			RetentionCap: cfg.Log.RetentionCap,
		},
		fetcher,
		sha256.New(),
		index,
		snapshots,
		diffs,
		buildSummarizer(cfg, logger),
		changelog,
		landing,
		system.New(),
		uuid.New(),
		logger,
	), nil
}

func buildSummarizer(cfg config.Config, logger *zap.Logger) watch.Summarizer {
	if !cfg.Summary.Enabled {
		return summary.Noop{}
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		logger.Warn("Summarizer credential not set; change records will use the fallback summary",
			zap.String("env", apiKeyEnv))
	}
	return summary.NewOpenAI(apiKey, summary.Config{
		Model:         cfg.Summary.Model,
		MaxTokens:     cfg.Summary.MaxTokens,
		MaxInputBytes: cfg.Summary.MaxInputBytes,
		Timeout:       cfg.SummaryTimeout(),
	}, logger)
}
