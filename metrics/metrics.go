// Package metrics provides Prometheus observability metrics for the volunteer
// coordination service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// MatchRequestsTotal counts match computations served, one per volunteer request.
var MatchRequestsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "dvs",
	Name:      "match_requests_total",
	Help:      "Total number of volunteer match computations served",
})

// MatchScores observes the total score of every match produced.
var MatchScores = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "dvs",
	Name:      "match_score",
	Help:      "Distribution of computed match scores",
	Buckets:   prometheus.LinearBuckets(0, 10, 11),
})

// MissionAcceptsTotal counts mission accept attempts by outcome (ok, error, rejected).
var MissionAcceptsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dvs",
	Name:      "mission_accepts_total",
	Help:      "Total number of mission accept operations by outcome",
}, []string{"outcome"})

// MissionUnacceptsTotal counts mission unaccept attempts by outcome (ok, error, rejected).
var MissionUnacceptsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dvs",
	Name:      "mission_unaccepts_total",
	Help:      "Total number of mission unaccept operations by outcome",
}, []string{"outcome"})

// CommitmentRepairsTotal counts one-sided commitments repaired by the reconciler.
var CommitmentRepairsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "dvs",
	Name:      "commitment_repairs_total",
	Help:      "Total number of one-sided mission commitments repaired",
})

// HTTPRequestsTotal counts HTTP requests by method, route and status code.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dvs",
	Name:      "http_requests_total",
	Help:      "Total number of HTTP requests served",
}, []string{"method", "route", "status"})

// HTTPRequestDuration observes HTTP request latency by route.
var HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "dvs",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request latency by route",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})
