package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ownersResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minutes",
		Subsystem: "pipeline",
		Name:      "owners_resolved_total",
		Help:      "Action item owners resolved, by method (exact, oracle).",
	}, []string{"method"})

	deadlinesResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minutes",
		Subsystem: "pipeline",
		Name:      "deadlines_resolved_total",
		Help:      "Action item deadlines resolved, by method (deterministic, oracle).",
	}, []string{"method"})

	itemsFlaggedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minutes",
		Subsystem: "pipeline",
		Name:      "items_flagged_total",
		Help:      "Action items flagged for review, by reason.",
	}, []string{"reason"})

	oracleFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minutes",
		Subsystem: "pipeline",
		Name:      "oracle_failures_total",
		Help:      "Oracle batch calls that produced no usable answer, by stage.",
	}, []string{"stage"})
)
