// Package metrics renders run outcomes in the Prometheus textfile
// format. teatrofeed is a batch tool with nothing listening between
// runs, so instead of serving /metrics it leaves a file for the
// node_exporter textfile collector to pick up.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

const namespace = "teatrofeed"

// Writer writes one run's metrics to a textfile.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write replaces the textfile with the given run's metrics. Each run
// starts from a fresh registry so sources removed from the
// configuration do not linger as stale series.
func (w *Writer) Write(run domain.RunRecord) error {
	reg := prometheus.NewRegistry()

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed run.",
	})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_success",
		Help:      "Whether the last run produced a feed (1) or failed (0).",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the last run.",
	})
	events := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_events",
		Help:      "Canonical events in the published feed.",
	})
	raw := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "raw_events",
		Help:      "Raw events collected across all sources.",
	})
	invalid := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "invalid_events",
		Help:      "Raw events rejected by validation.",
	})
	sourceUp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_up",
		Help:      "Whether the source fetch succeeded (1) or failed (0).",
	}, []string{"source"})
	sourceFetched := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_fetched",
		Help:      "Raw events the source yielded.",
	}, []string{"source"})
	sourceInvalid := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_invalid",
		Help:      "Raw events from the source rejected by validation.",
	}, []string{"source"})
	sourceDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_duration_seconds",
		Help:      "Wall time of the source fetch.",
	}, []string{"source"})

	reg.MustRegister(lastRun, success, duration, events, raw, invalid,
		sourceUp, sourceFetched, sourceInvalid, sourceDuration)

	lastRun.Set(float64(run.FinishedAt.Unix()))
	if run.Err == "" {
		success.Set(1)
	}
	duration.Set(run.FinishedAt.Sub(run.StartedAt).Seconds())
	events.Set(float64(run.EventCount))
	raw.Set(float64(run.RawCount))
	invalid.Set(float64(run.InvalidCount))

	for _, src := range run.Sources {
		up := 0.0
		if src.OK() {
			up = 1.0
		}
		sourceUp.WithLabelValues(src.Source).Set(up)
		sourceFetched.WithLabelValues(src.Source).Set(float64(src.Fetched))
		sourceInvalid.WithLabelValues(src.Source).Set(float64(src.Invalid))
		sourceDuration.WithLabelValues(src.Source).Set(src.Duration.Seconds())
	}

	return prometheus.WriteToTextfile(w.path, reg)
}

// Path returns the textfile location.
func (w *Writer) Path() string {
	return w.path
}
