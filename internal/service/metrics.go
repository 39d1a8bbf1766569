package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregateRecomputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitecheck_aggregate_recomputes_total",
			Help: "Total number of restaurant aggregate recomputations by outcome.",
		},
		[]string{"outcome"},
	)

	aggregateDriftTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bitecheck_aggregate_drift_total",
			Help: "Times a stored restaurant aggregate disagreed with the value recomputed from its reviews.",
		},
	)

	reconcileRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bitecheck_reconcile_runs_total",
			Help: "Total number of reconciliation runs.",
		},
	)

	reconcileRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitecheck_reconcile_repairs_total",
			Help: "Total number of reconciliation repairs by kind.",
		},
		[]string{"kind"},
	)
)
