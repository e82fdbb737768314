// Package metrics registers the Prometheus collectors for the credit ledger
// and the generation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reservation outcomes.
const (
	OutcomeReserved     = "reserved"
	OutcomeInsufficient = "insufficient"
	OutcomeCommitted    = "committed"
	OutcomeRolledBack   = "rolled_back"
	OutcomeSwept        = "swept"
	OutcomeError        = "error"
)

// Generation outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeFailed      = "failed"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
)

// TypeInvalid labels requests whose generation type is unknown.
const TypeInvalid = "invalid"

var CreditReservations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "smartstore",
	Subsystem: "credit",
	Name:      "reservations_total",
	Help:      "Credit reservations by outcome.",
}, []string{"outcome"})

var CreditsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "smartstore",
	Subsystem: "credit",
	Name:      "granted_total",
	Help:      "Credits added to accounts by transaction kind.",
}, []string{"kind"})

var Generations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "smartstore",
	Name:      "generations_total",
	Help:      "Generation requests by type and outcome.",
}, []string{"type", "outcome"})

var GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "smartstore",
	Name:      "generation_duration_seconds",
	Help:      "Time spent waiting on the content generator.",
	Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
}, []string{"type"})

// ObserveGeneration records the generator latency for genType since start.
func ObserveGeneration(genType string, start time.Time) {
	GenerationDuration.WithLabelValues(genType).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
