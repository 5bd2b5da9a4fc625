// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes the result of the last run for the node-exporter
// textfile collector. A cron-driven run has no scrape endpoint, so the
// registry is written to a file when the run ends and every value describes
// that single run.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdiddy/paper-digest/internal/pipeline"
)

const (
	namespace = "paper_digest"
	subsystem = "last_run"
)

var outcomes = []pipeline.Outcome{
	pipeline.OutcomeNoPapers,
	pipeline.OutcomeNoDigest,
	pipeline.OutcomeWithDigest,
}

// Metrics holds the last-run gauges of one process.
type Metrics struct {
	registry *prometheus.Registry

	outcome      *prometheus.GaugeVec
	retrieved    prometheus.Gauge
	relevant     prometheus.Gauge
	fragments    prometheus.Gauge
	skipped      *prometheus.GaugeVec
	notification *prometheus.GaugeVec
	duration     prometheus.Gauge
	timestamp    prometheus.Gauge
}

// New registers the gauges on a fresh pedantic registry.
func New() *Metrics {
	reg := prometheus.NewPedanticRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		outcome: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outcome",
			Help:      "1 for the terminal outcome of the most recent run, 0 for the others.",
		}, []string{"outcome"}),
		retrieved: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "papers_retrieved",
			Help:      "Papers returned by the retriever in the most recent run.",
		}),
		relevant: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "papers_relevant",
			Help:      "Papers that passed the relevance gate in the most recent run.",
		}),
		fragments: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "digest_fragments",
			Help:      "Papers included in the digest of the most recent run.",
		}),
		skipped: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "papers_skipped",
			Help:      "Papers dropped before the digest in the most recent run, by reason.",
		}, []string{"reason"}),
		notification: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification",
			Help:      "1 when the most recent digest notification had this result.",
		}, []string{"result"}),
		duration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
		timestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "timestamp_seconds",
			Help:      "Unix time at which the most recent run finished.",
		}),
	}
}

// Observe replaces the gauges with the values of report.
func (m *Metrics) Observe(report pipeline.Report) {
	for _, o := range outcomes {
		v := 0.0
		if o == report.Outcome {
			v = 1
		}
		m.outcome.WithLabelValues(o.String()).Set(v)
	}
	m.retrieved.Set(float64(report.Retrieved))
	m.relevant.Set(float64(report.Relevant))
	m.fragments.Set(float64(len(report.Fragments)))

	m.skipped.Reset()
	for reason, n := range report.SkipReasons() {
		m.skipped.WithLabelValues(reason).Set(float64(n))
	}

	m.notification.Reset()
	if report.Outcome == pipeline.OutcomeWithDigest {
		result := "sent"
		if !report.Notified {
			result = "failed"
		}
		m.notification.WithLabelValues(result).Set(1)
	}

	m.duration.Set(report.Duration().Seconds())
	if !report.Finished.IsZero() {
		m.timestamp.Set(float64(report.Finished.Unix()))
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, m.registry), "writing metrics to %s", path)
}
