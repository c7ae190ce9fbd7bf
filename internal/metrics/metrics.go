// Package metrics counts batch events and exports them in the Prometheus text format,
// for a node-exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/challan-dev/challan/internal/batch"
)

// Recorder bundles batch metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	FilesTotal     *prometheus.CounterVec
	AnomaliesTotal *prometheus.CounterVec
	RecordsTotal   prometheus.Counter
	ReportsTotal   *prometheus.CounterVec
	RunDuration    prometheus.Gauge
	LastRunState   *prometheus.GaugeVec

	started time.Time
}

// New constructs and registers the metrics.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "challan_batch_files_total",
				Help: "Input files by outcome",
			},
			[]string{"outcome"},
		),
		AnomaliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "challan_batch_dropped_rows_total",
				Help: "Rows dropped while ingesting, by reason",
			},
			[]string{"reason"},
		),
		RecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "challan_batch_records_total",
			Help: "Records folded into the calendar table",
		}),
		ReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "challan_batch_reports_total",
				Help: "Reports by kind and result",
			},
			[]string{"kind", "result"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "challan_batch_duration_seconds",
			Help: "Duration of the last batch",
		}),
		LastRunState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "challan_batch_last_state",
				Help: "1 for the final state of the last batch",
			},
			[]string{"state"},
		),
	}
	r.registry.MustRegister(
		r.FilesTotal,
		r.AnomaliesTotal,
		r.RecordsTotal,
		r.ReportsTotal,
		r.RunDuration,
		r.LastRunState,
	)
	return r
}

// Observe implements batch.Observer. It is not safe for concurrent use; feed it from
// one goroutine.
func (r *Recorder) Observe(ev batch.Event) {
	switch ev.Kind {
	case batch.EventStarted:
		r.started = ev.Time
	case batch.EventFileCompleted:
		r.FilesTotal.WithLabelValues("completed").Inc()
		r.RecordsTotal.Add(float64(ev.Count))
	case batch.EventFileSkipped:
		r.FilesTotal.WithLabelValues("skipped").Inc()
	case batch.EventFileAnomaly:
		r.AnomaliesTotal.WithLabelValues(ev.Reason).Add(float64(ev.Count))
	case batch.EventReportWritten:
		r.ReportsTotal.WithLabelValues(string(ev.Report), "written").Inc()
	case batch.EventReportFailed:
		r.ReportsTotal.WithLabelValues(string(ev.Report), "failed").Inc()
	case batch.EventFinished:
		if !r.started.IsZero() {
			r.RunDuration.Set(ev.Time.Sub(r.started).Seconds())
		}
		r.LastRunState.Reset()
		r.LastRunState.WithLabelValues(ev.Message).Set(1)
	}
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
