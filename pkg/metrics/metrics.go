// Package metrics provides Prometheus metrics for the agenda service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SuggestionsSubmittedTotal tracks submitted suggestions
	SuggestionsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "suggestions",
			Name:      "submitted_total",
			Help:      "Total number of submitted suggestions",
		},
	)

	// SuggestionDecisionsTotal tracks decisions by outcome
	SuggestionDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "suggestions",
			Name:      "decisions_total",
			Help:      "Total number of suggestion decisions by outcome",
		},
		[]string{"decision"},
	)

	// DecisionDuration tracks how long the decide transaction takes
	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "agenda",
			Subsystem: "suggestions",
			Name:      "decision_duration_seconds",
			Help:      "Duration of the decide transaction in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// FixtureRecordsLoaded tracks persons loaded by the fixture importer
	FixtureRecordsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "fixture",
			Name:      "records_loaded_total",
			Help:      "Total number of fixture records loaded",
		},
	)
)
