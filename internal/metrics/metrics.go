// Package metrics exposes Prometheus collectors for the watch pipeline.
//
// The process runs as a batch job and serves no HTTP endpoint, so metrics
// are emitted in text exposition format to a node_exporter textfile
// collector path when one is configured.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	registry *prometheus.Registry

	sourcesTotal         *prometheus.CounterVec
	summaryFallbackTotal prometheus.Counter
	runDurationSeconds   prometheus.Gauge
	lastRunTimestamp     prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		factory := promauto.With(registry)

		sourcesTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagewatch_sources_total",
				Help: "Total number of sources processed, labeled by source and outcome.",
			},
			[]string{"source", "status"},
		)

		summaryFallbackTotal = factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pagewatch_summary_fallback_total",
				Help: "Total number of change records written with the fallback summary.",
			},
		)

		runDurationSeconds = factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pagewatch_run_duration_seconds",
				Help: "Wall clock duration of the last completed run.",
			},
		)

		lastRunTimestamp = factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pagewatch_last_run_timestamp_seconds",
				Help: "Unix time at which the last run completed.",
			},
		)
	})
}

// ObserveSource increments the per-source outcome counter.
func ObserveSource(source, status string) {
	if sourcesTotal == nil {
		return
	}
	sourcesTotal.WithLabelValues(source, status).Inc()
}

// ObserveSummaryFallback counts a change record that fell back to the fixed
// summary text.
func ObserveSummaryFallback() {
	if summaryFallbackTotal == nil {
		return
	}
	summaryFallbackTotal.Inc()
}

// ObserveRunDuration records the duration and completion time of a run.
func ObserveRunDuration(d time.Duration) {
	if runDurationSeconds == nil {
		return
	}
	runDurationSeconds.Set(d.Seconds())
	lastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile gathers all collectors and writes them in text exposition
// format to path, atomically via a temp file so the node_exporter textfile
// collector never reads a partial scrape.
func WriteTextfile(path string) error {
	if registry == nil {
		return fmt.Errorf("metrics not initialized")
	}
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create metrics temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(tmp, mf); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename metrics file: %w", err)
	}
	return nil
}
