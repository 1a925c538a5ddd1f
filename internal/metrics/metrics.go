// Package metrics exposes Prometheus instrumentation for the record store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wattcount"

// StoreMetrics counts record-store traffic per collection. A nil
// *StoreMetrics is valid and records nothing.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	records    *prometheus.GaugeVec
}

// NewStoreMetrics creates the store collectors and registers them with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Collection reads and writes, by collection and operation.",
		}, []string{"collection", "op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Failed collection reads and writes, by collection and operation.",
		}, []string{"collection", "op"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records",
			Help:      "Record count of each collection as of its last read or write.",
		}, []string{"collection"}),
	}
	reg.MustRegister(m.operations, m.failures, m.records)
	return m
}

// ObserveRead records a collection read that returned n records.
func (m *StoreMetrics) ObserveRead(collection string, n int, err error) {
	m.observe(collection, "read", n, err)
}

// ObserveWrite records a collection write of n records.
func (m *StoreMetrics) ObserveWrite(collection string, n int, err error) {
	m.observe(collection, "write", n, err)
}

func (m *StoreMetrics) observe(collection, op string, n int, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(collection, op).Inc()
	if err != nil {
		m.failures.WithLabelValues(collection, op).Inc()
		return
	}
	m.records.WithLabelValues(collection).Set(float64(n))
}

// WriteTextfile dumps every metric gathered by g to path in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
