// Package metrics exposes Prometheus counters for extraction and reconciliation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

const namespace = "graphweave"

// Metrics groups the collectors of one registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Rows counts viable records.
	Rows prometheus.Counter
	// Transformations counts target transformer applications.
	Transformations prometheus.Counter
	// Elements counts declared nodes and edges.
	// Labels: kind (node, edge)
	Elements *prometheus.CounterVec
	// NonViable counts records that produced no subject.
	NonViable prometheus.Counter
	// Errors counts accumulated or raised errors.
	// Labels: category (config, data, interface, merge, run, unknown)
	Errors *prometheus.CounterVec
	// MergedGroups counts groups of duplicates reduced to one element.
	// Labels: kind (node, edge)
	MergedGroups *prometheus.CounterVec
	// FoldedIDs counts identifiers remapped by node fusion.
	FoldedIDs prometheus.Counter
	// Duration measures whole operations.
	// Labels: operation (extraction, reconciliation)
	Duration *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg uses a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		Rows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "rows_total",
			Help:      "Total viable records processed by extraction runs",
		}),
		Transformations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "transformations_total",
			Help:      "Total target transformer applications",
		}),
		Elements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "elements_total",
			Help:      "Total nodes and edges declared",
		}, []string{"kind"}),
		NonViable: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "non_viable_rows_total",
			Help:      "Total records that produced no subject",
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors by category",
		}, []string{"category"}),
		MergedGroups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "merged_groups_total",
			Help:      "Total groups of duplicates fused into one element",
		}, []string{"kind"}),
		FoldedIDs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "folded_ids_total",
			Help:      "Total node identifiers remapped by fusion",
		}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of extraction and reconciliation runs",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"operation"}),
	}
}

// ObserveExtraction records the totals of one extraction run.
func (m *Metrics) ObserveExtraction(rows, transformations, nodes, edges, nonViable int, errs []error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Rows.Add(float64(rows))
	m.Transformations.Add(float64(transformations))
	m.Elements.WithLabelValues("node").Add(float64(nodes))
	m.Elements.WithLabelValues("edge").Add(float64(edges))
	m.NonViable.Add(float64(nonViable))
	m.ObserveErrors(errs)
	m.Duration.WithLabelValues("extraction").Observe(elapsed.Seconds())
}

// ObserveReconciliation records the totals of one reconciliation.
func (m *Metrics) ObserveReconciliation(nodeGroups, edgeGroups, folded int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.MergedGroups.WithLabelValues("node").Add(float64(nodeGroups))
	m.MergedGroups.WithLabelValues("edge").Add(float64(edgeGroups))
	m.FoldedIDs.Add(float64(folded))
	m.Duration.WithLabelValues("reconciliation").Observe(elapsed.Seconds())
}

// ObserveErrors counts errs by category.
func (m *Metrics) ObserveErrors(errs []error) {
	if m == nil {
		return
	}
	for category, n := range gwerrors.Summarize(errs) {
		m.Errors.WithLabelValues(string(category)).Add(float64(n))
	}
}
