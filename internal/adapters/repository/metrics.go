package repository

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts record store operations by kind and outcome
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates store metrics and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_store_operations_total",
				Help: "Total number of record store operations",
			},
			[]string{"operation", "result"},
		),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}
