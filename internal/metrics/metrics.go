// Package metrics exposes Prometheus instruments for statement generation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for StatementRequests.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeRenderError = "render_error"
	OutcomeStoreError  = "store_error"
)

// StatementRequests counts statement requests by outcome.
var StatementRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "statement",
	Name:      "requests_total",
	Help:      "Statement generation requests by outcome.",
}, []string{"outcome"})

// RenderDuration tracks time spent inside the PDF engine.
var RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "statement",
	Name:      "render_seconds",
	Help:      "Time spent rendering a statement PDF.",
	Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
})

// StatementRows counts transaction rows rendered.
var StatementRows = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "statement",
	Name:      "rows_total",
	Help:      "Transaction rows rendered into statements.",
})

// JobsProcessed counts background render jobs by final status.
var JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "statement",
	Name:      "jobs_processed_total",
	Help:      "Background statement jobs by final status.",
}, []string{"status"})

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
