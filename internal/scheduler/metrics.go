package scheduler

import "github.com/prometheus/client_golang/prometheus"

var runsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rent_scheduler_runs_total",
		Help: "Rent scheduler firings, partitioned by outcome.",
	},
	[]string{"outcome"},
)

func rentRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

// RegisterMetrics registers the scheduler collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(runsTotal)
}
