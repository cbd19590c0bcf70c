package crack

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// observationsTotal counts narrowing passes by narrower
	observationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rngcrack_observations_total",
		Help: "Narrowing passes by narrower",
	}, []string{"narrower"})

	// survivorsRatio tracks the share of candidates kept per pass
	survivorsRatio = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rngcrack_survivor_ratio",
		Help:    "Fraction of candidates surviving one narrowing pass",
		Buckets: prometheus.ExponentialBuckets(1.0/(1<<20), 4, 11),
	}, []string{"narrower"})

	contradictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rngcrack_contradictions_total",
		Help: "Observations that eliminated every candidate",
	}, []string{"narrower"})

	convergencesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rngcrack_convergences_total",
		Help: "Candidate sets narrowed to a single value",
	}, []string{"narrower"})

	resetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rngcrack_resets_total",
		Help: "Tracking resets surfaced to the user by reason",
	}, []string{"reason"})

	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rngcrack_plans_total",
		Help: "Manipulation plan requests by status",
	}, []string{"status"})

	// planActions tracks how many consumer actions accepted plans need
	planActions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rngcrack_plan_actions",
		Help:    "Consumer actions required by accepted plans",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250, 500, 1000},
	})
)

const (
	narrowerOutput   = "output_seed"
	narrowerInternal = "internal_state"
)
