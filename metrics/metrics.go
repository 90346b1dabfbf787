// Package metrics registers the routing core's Prometheus collectors.
// Exposition is the caller's concern; the core only records.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RoutesSolved counts solve calls by algorithm and outcome
	// ("ok", "no_route", "error").
	RoutesSolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chainroute",
			Subsystem: "router",
			Name:      "routes_solved_total",
			Help:      "Route queries solved, by algorithm and outcome.",
		},
		[]string{"algorithm", "outcome"},
	)

	// SolveDuration observes wall-clock solve time per algorithm.
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chainroute",
			Subsystem: "router",
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock duration of route solves.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		},
		[]string{"algorithm"},
	)
)

func init() {
	prometheus.MustRegister(RoutesSolved, SolveDuration)
}
