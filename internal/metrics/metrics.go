// Package metrics exports the outcome of a bootstrap run as Prometheus
// gauges. The run is a batch job, so the gauges are pushed to a Pushgateway
// instead of being scraped.
package metrics

import (
	"fmt"
	"streamdb/internal/bootstrap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "streamdb_bootstrap"

type Recorder struct {
	Registry *prometheus.Registry

	steps       *prometheus.GaugeVec
	duration    prometheus.Gauge
	fatal       prometheus.Gauge
	collections prometheus.Gauge
	documents   prometheus.Gauge
	dataBytes   prometheus.Gauge
	indexBytes  prometheus.Gauge
	lastSuccess prometheus.Gauge

	collectionDocs *prometheus.GaugeVec
	replicationLag prometheus.Gauge
}

// New returns a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		steps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "steps",
			Help:      "Number of bootstrap steps by kind and outcome in the last run.",
		}, []string{"step", "outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		fatal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "failed",
			Help:      "1 if the last run had a fatal failure.",
		}),
		collections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collections",
			Help:      "Collections in the database after the last run.",
		}),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents",
			Help:      "Documents in the database after the last run.",
		}),
		dataBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_size_bytes",
			Help:      "Data size reported after the last run.",
		}),
		indexBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_size_bytes",
			Help:      "Index size reported after the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run without fatal failures.",
		}),
		collectionDocs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_documents",
			Help:      "Documents per collection after the last run.",
		}, []string{"collection"}),
		replicationLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replication_lag_seconds",
			Help:      "Time until a document written on the primary was readable on a secondary.",
		}),
	}
	r.Registry.MustRegister(r.steps, r.duration, r.fatal, r.collections, r.documents, r.dataBytes, r.indexBytes, r.lastSuccess,
		r.collectionDocs, r.replicationLag)
	return r
}

// Observe sets the gauges from a finished report.
func (r *Recorder) Observe(report *bootstrap.Report) {
	r.steps.Reset()
	for _, s := range report.Steps {
		r.steps.WithLabelValues(s.Step, string(s.Outcome)).Inc()
	}
	r.duration.Set(report.Elapsed().Seconds())

	if report.Fatal() {
		r.fatal.Set(1)
	} else {
		r.fatal.Set(0)
		r.lastSuccess.Set(float64(report.Finished.Unix()))
	}

	if report.Stats != nil {
		r.collections.Set(float64(report.Stats.Collections))
		r.documents.Set(float64(report.Stats.Objects))
		r.dataBytes.Set(float64(report.Stats.DataSize))
		r.indexBytes.Set(float64(report.Stats.IndexSize))

		r.collectionDocs.Reset()
		for name, n := range report.Stats.Counts {
			r.collectionDocs.WithLabelValues(name).Set(float64(n))
		}
	}
	if report.Replication != nil {
		r.replicationLag.Set(report.Replication.Lag.Seconds())
	}
}

// Push sends the registry to a Pushgateway, grouped by database.
func (r *Recorder) Push(url, job, database string) error {
	if err := push.New(url, job).Gatherer(r.Registry).Grouping("database", database).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
