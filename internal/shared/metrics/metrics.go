// Package metrics owns the prometheus registry of the payouts console.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payouts"

// Custom registry keeps the endpoint free of collectors registered by
// third-party packages on the default one.
var registry = prometheus.NewRegistry()

var (
	auto = promauto.With(registry)

	PagesFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "pages_fetched_total",
		Help:      "Pages fetched from the accounting backend, by outcome.",
	}, []string{"outcome"})

	Saves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payroll",
		Name:      "saves_total",
		Help:      "Save runs by final state.",
	}, []string{"result"})

	Upserts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payroll",
		Name:      "rate_upserts_total",
		Help:      "Rate record upserts by mode and outcome.",
	}, []string{"mode", "outcome"})

	Reconciles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cashflow",
		Name:      "reconciles_total",
		Help:      "Ledger reconciliations by outcome (skipped, created, updated, failed).",
	}, []string{"outcome"})

	OutboxPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Outbox publish attempts by outcome.",
	}, []string{"outcome"})

	OutboxBacklog = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "backlog",
		Help:      "Outbox events waiting to be published.",
	})

	SaveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "payroll",
		Name:      "save_duration_seconds",
		Help:      "Wall time of a full persist, reload and reconcile run.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
