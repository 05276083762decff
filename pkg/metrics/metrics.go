// Package metrics defines the Prometheus collectors recorded by a text
// index. A nil *Metrics records nothing, so callers never need to check
// whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModeRanked = "ranked"
	ModeSet    = "set"
)

// Metrics holds all Prometheus collectors for one index.
type Metrics struct {
	DocsIndexedTotal  prometheus.Counter
	DocsRemovedTotal  prometheus.Counter
	RejectionsTotal   *prometheus.CounterVec
	IndexDocuments    prometheus.Gauge
	IndexTerms        prometheus.Gauge
	SearchQueries     *prometheus.CounterVec
	SearchLatency     *prometheus.HistogramVec
	SearchResultCount *prometheus.HistogramVec
}

// New creates the collectors under namespace and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_indexed_total",
				Help:      "Total documents added to the index.",
			},
		),
		DocsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_removed_total",
				Help:      "Total documents removed from the index.",
			},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_rejections_total",
				Help:      "Add operations rejected, by reason.",
			},
			[]string{"reason"},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_documents",
				Help:      "Number of documents currently indexed.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_terms",
				Help:      "Number of distinct terms currently indexed.",
			},
		),
		SearchQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Total search queries by mode (ranked, set).",
			},
			[]string{"mode"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Search latency in seconds.",
				Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"mode"},
		),
		SearchResultCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results_count",
				Help:      "Number of documents matched per search.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 1000},
			},
			[]string{"mode"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.DocsIndexedTotal,
		m.DocsRemovedTotal,
		m.RejectionsTotal,
		m.IndexDocuments,
		m.IndexTerms,
		m.SearchQueries,
		m.SearchLatency,
		m.SearchResultCount,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveIndexed(n int) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Add(float64(n))
}

func (m *Metrics) ObserveRemoved() {
	if m == nil {
		return
	}
	m.DocsRemovedTotal.Inc()
}

func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.RejectionsTotal.WithLabelValues(reason).Inc()
}

// SetSize records the current document and term counts.
func (m *Metrics) SetSize(docs, terms int) {
	if m == nil {
		return
	}
	m.IndexDocuments.Set(float64(docs))
	m.IndexTerms.Set(float64(terms))
}

func (m *Metrics) ObserveSearch(mode string, start time.Time, results int) {
	if m == nil {
		return
	}
	m.SearchQueries.WithLabelValues(mode).Inc()
	m.SearchLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	m.SearchResultCount.WithLabelValues(mode).Observe(float64(results))
}
