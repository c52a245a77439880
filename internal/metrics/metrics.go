// Package metrics exposes planner store activity as Prometheus collectors.
// Slotify has no server, so the registry is dumped to a node-exporter textfile on exit.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slotify"

var (
	storeWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "writes_total",
		Help:      "Activity writes by operation and result.",
	}, []string{"op", "result"})
	openViews = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "open_live_views",
		Help:      "Live views currently subscribed to the store.",
	})
	lastWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "last_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful activity write.",
	})
	refreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "view_refresh_seconds",
		Help:      "Time spent recomputing live views after a write.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(storeWrites, openViews, lastWriteGauge, refreshDuration)
}

// Result labels.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// RecordWrite counts one write attempt of op with the given result label.
func RecordWrite(op, result string) {
	storeWrites.WithLabelValues(op, result).Inc()
}

// RecordWritePersisted updates the last write watermark.
func RecordWritePersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastWriteGauge.Set(float64(ts.Unix()))
}

// SetOpenViews reports the number of live views currently open.
func SetOpenViews(n int) {
	openViews.Set(float64(n))
}

// ObserveRefresh records how long a live view refresh took.
func ObserveRefresh(d time.Duration) {
	refreshDuration.Observe(d.Seconds())
}

// WriteTextfile writes the default registry to path in the text exposition format.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
