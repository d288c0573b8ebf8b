package services

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK          = "ok"
	resultRejected    = "rejected"
	resultUnavailable = "unavailable"
	resultSkipped     = "skipped"
)

var metrics = []prometheus.Collector{
	operationsTotal,
	persistFailuresTotal,
	budgetGauge,
}

var operationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger operations, partitioned by operation and result.",
	},
	[]string{"operation", "result"},
)

var persistFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ledger_persist_failures_total",
		Help: "Ledger changes that could not be written to the store.",
	},
)

var budgetGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ledger_budget",
		Help: "Budget after the last committed ledger operation.",
	},
)

// RegisterMetrics registers the ledger collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range metrics {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register ledger metrics: %w", err)
		}
	}
	return nil
}
