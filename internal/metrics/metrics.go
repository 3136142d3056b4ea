package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the crawler and comparison service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	RetriesTotal  *prometheus.CounterVec
	ItemsTotal    *prometheus.CounterVec
	RowsTotal     *prometheus.CounterVec
	Comparisons   *prometheus.CounterVec
}

// New registers the collectors on reg. Passing nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rankdelta",
			Subsystem: "riot",
			Name:      "requests_total",
			Help:      "Upstream API responses by status code (0 for transport errors).",
		}, []string{"status"}),
		RetriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rankdelta",
			Subsystem: "riot",
			Name:      "retries_total",
			Help:      "Upstream retries scheduled by status code.",
		}, []string{"status"}),
		ItemsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rankdelta",
			Subsystem: "crawl",
			Name:      "items_total",
			Help:      "Crawl work items by stage and outcome.",
		}, []string{"stage", "outcome"}), // outcome: ok, skipped, auth
		RowsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rankdelta",
			Subsystem: "dataset",
			Name:      "rows_total",
			Help:      "Match rows written or loaded.",
		}, []string{"op"}),
		Comparisons: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rankdelta",
			Subsystem: "compare",
			Name:      "requests_total",
			Help:      "Comparison requests by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRequest(status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveRetry(status int) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveItem(stage, outcome string) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) AddRows(op string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsTotal.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) ObserveComparison(result string) {
	if m == nil {
		return
	}
	m.Comparisons.WithLabelValues(result).Inc()
}
