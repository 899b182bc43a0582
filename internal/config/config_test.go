package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagewatch/pagewatch/internal/watch"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
sources:
  - name: news
    url: https://example.gov/newsroom/all-news
  - name: alerts
    url: https://example.gov/newsroom/alerts
http:
  timeout_seconds: 45
  user_agent: custom-agent/2.0
storage:
  output_dir: out
  changes_dir: out/changes
  snapshot_dir: snaps
  index_path: state/index.json
  log_path: state/changelog.json
log:
  retention_cap: 100
  landing_count: 10
summary:
  enabled: false
  model: test-model
  max_tokens: 64
  max_input_bytes: 4096
  timeout_seconds: 10
metrics:
  textfile_path: /var/lib/node_exporter/pagewatch.prom
logging:
  development: true
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].Name != "news" {
		t.Errorf("expected first source name news, got %s", cfg.Sources[0].Name)
	}
	if cfg.HTTP.TimeoutSeconds != 45 {
		t.Errorf("expected timeout 45, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.FetchTimeout() != 45*time.Second {
		t.Errorf("expected fetch timeout 45s, got %s", cfg.FetchTimeout())
	}
	if cfg.Storage.IndexPath != "state/index.json" {
		t.Errorf("expected index path override, got %s", cfg.Storage.IndexPath)
	}
	if cfg.Log.RetentionCap != 100 {
		t.Errorf("expected retention cap 100, got %d", cfg.Log.RetentionCap)
	}
	if cfg.Summary.Enabled {
		t.Error("expected summary disabled")
	}
	if cfg.Metrics.TextfilePath != "/var/lib/node_exporter/pagewatch.prom" {
		t.Errorf("unexpected textfile path %s", cfg.Metrics.TextfilePath)
	}
	if !cfg.Logging.Development {
		t.Error("expected development logging")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
sources:
  - name: news
    url: https://example.gov/newsroom/all-news
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.TimeoutSeconds != 30 {
		t.Errorf("expected default timeout 30, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.Log.RetentionCap != 200 {
		t.Errorf("expected default retention cap 200, got %d", cfg.Log.RetentionCap)
	}
	if cfg.Log.LandingCount != 50 {
		t.Errorf("expected default landing count 50, got %d", cfg.Log.LandingCount)
	}
	if cfg.Storage.OutputDir != "docs" {
		t.Errorf("expected default output dir docs, got %s", cfg.Storage.OutputDir)
	}
	if !cfg.Summary.Enabled {
		t.Error("expected summary enabled by default")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Sources: []watch.Source{{Name: "news", URL: "https://example.gov/news"}},
			HTTP:    HTTPConfig{TimeoutSeconds: 30},
			Log:     LogConfig{RetentionCap: 200, LandingCount: 50},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NoSources", func(c *Config) { c.Sources = nil }},
		{"EmptyName", func(c *Config) { c.Sources[0].Name = " " }},
		{"DuplicateName", func(c *Config) {
			c.Sources = append(c.Sources, c.Sources[0])
		}},
		{"DuplicateURL", func(c *Config) {
			c.Sources = append(c.Sources, watch.Source{Name: "alerts", URL: c.Sources[0].URL})
		}},
		{"BadURL", func(c *Config) { c.Sources[0].URL = "not a url" }},
		{"ZeroTimeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{"ZeroRetention", func(c *Config) { c.Log.RetentionCap = 0 }},
		{"LandingAboveCap", func(c *Config) { c.Log.LandingCount = 500 }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
