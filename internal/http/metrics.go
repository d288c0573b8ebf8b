package http

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests, partitioned by route and status code.",
	},
	[]string{"route", "code"},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route"},
)

var rateLimitHits = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_hits_total",
		Help: "Requests rejected by the per-client rate limiter.",
	},
)

// RegisterMetrics registers the HTTP collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{requestsTotal, requestDuration, rateLimitHits} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register http metrics: %w", err)
		}
	}
	return nil
}

func observeRequest(route string, status int, seconds float64) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(route).Observe(seconds)
}
