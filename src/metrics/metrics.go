package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Navigation outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
)

var (
	// NavigationsTotal counts navigations by route name and outcome.
	// Unresolved paths are recorded under the route label "none".
	NavigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigations_total",
			Help: "Navigations by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	// ViewLoadsTotal counts view module fetches by view and outcome. Cache hits are not fetches.
	ViewLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_loads_total",
			Help: "View module fetches by view and outcome",
		},
		[]string{"view", "outcome"},
	)

	ViewLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "view_load_duration_seconds",
			Help:    "View module fetch duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"view"},
	)
)
