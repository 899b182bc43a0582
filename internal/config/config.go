// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pagewatch/pagewatch/internal/watch"
)

// Config captures all configuration knobs loaded via Viper. The summarizer
// credential is deliberately absent: it comes from the OPENAI_API_KEY
// environment variable only and never lives in a config file.
type Config struct {
	Sources []watch.Source `mapstructure:"sources"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Storage StorageConfig  `mapstructure:"storage"`
	Log     LogConfig      `mapstructure:"log"`
	Summary SummaryConfig  `mapstructure:"summary"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// StorageConfig sets the on-disk layout for all persisted state.
type StorageConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	ChangesDir  string `mapstructure:"changes_dir"`
	SnapshotDir string `mapstructure:"snapshot_dir"`
	IndexPath   string `mapstructure:"index_path"`
	LogPath     string `mapstructure:"log_path"`
}

// LogConfig bounds the change log and the landing page listing.
type LogConfig struct {
	RetentionCap int `mapstructure:"retention_cap"`
	LandingCount int `mapstructure:"landing_count"`
}

// SummaryConfig governs the optional synopsis step.
type SummaryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Model          string `mapstructure:"model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	MaxInputBytes  int    `mapstructure:"max_input_bytes"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// MetricsConfig points at an optional node_exporter textfile collector path.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "pagewatch/1.0 (+https://github.com/pagewatch/pagewatch)")
	v.SetDefault("storage.output_dir", "docs")
	v.SetDefault("storage.changes_dir", "docs/changes")
	v.SetDefault("storage.snapshot_dir", "snapshots")
	v.SetDefault("storage.index_path", "index.json")
	v.SetDefault("storage.log_path", "changelog.json")
	v.SetDefault("log.retention_cap", 200)
	v.SetDefault("log.landing_count", 50)
	v.SetDefault("summary.enabled", true)
	v.SetDefault("summary.model", "gpt-4o-mini")
	v.SetDefault("summary.max_tokens", 256)
	v.SetDefault("summary.max_input_bytes", 16*1024)
	v.SetDefault("summary.timeout_seconds", 30)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seenNames := make(map[string]struct{}, len(c.Sources))
	seenURLs := make(map[string]string, len(c.Sources))
	for _, src := range c.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("source name must not be empty")
		}
		if _, dup := seenNames[src.Name]; dup {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seenNames[src.Name] = struct{}{}
		u, err := url.Parse(src.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("source %q has invalid url %q", src.Name, src.URL)
		}
		// The fetch collector tracks visited URLs per run, so a repeated
		// URL would fail on its second source. Treat it as a config error.
		if other, dup := seenURLs[src.URL]; dup {
			return fmt.Errorf("sources %q and %q share url %q", other, src.Name, src.URL)
		}
		seenURLs[src.URL] = src.Name
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Log.RetentionCap <= 0 {
		return fmt.Errorf("log.retention_cap must be > 0")
	}
	if c.Log.LandingCount <= 0 || c.Log.LandingCount > c.Log.RetentionCap {
		return fmt.Errorf("log.landing_count must be in (0, retention_cap]")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// SummaryTimeout converts the summarizer timeout config into a duration.
func (c Config) SummaryTimeout() time.Duration {
	return time.Duration(c.Summary.TimeoutSeconds) * time.Second
}
