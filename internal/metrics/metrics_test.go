package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(200)
	m.ObserveRetry(429)
	m.ObserveItem("match_ids", "ok")
	m.AddRows("write", 10)
	m.ObserveComparison("ok")
}

func TestCountersRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest(200)
	m.ObserveRequest(200)
	m.ObserveRetry(503)
	m.ObserveItem("match_data", "skipped")
	m.AddRows("write", 3)
	m.AddRows("write", 0)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("200")); got != 2 {
		t.Errorf("Expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.RetriesTotal.WithLabelValues("503")); got != 1 {
		t.Errorf("Expected 1 retry, got %v", got)
	}
	if got := testutil.ToFloat64(m.ItemsTotal.WithLabelValues("match_data", "skipped")); got != 1 {
		t.Errorf("Expected 1 skipped item, got %v", got)
	}
	if got := testutil.ToFloat64(m.RowsTotal.WithLabelValues("write")); got != 3 {
		t.Errorf("Expected 3 rows, got %v", got)
	}
}
