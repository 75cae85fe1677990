// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cast outcome label values
const (
	OutcomeAccepted             = "accepted"
	OutcomeAlreadyVoted         = "already_voted"
	OutcomeNotEligible          = "not_eligible"
	OutcomeConstituencyMismatch = "constituency_mismatch"
	OutcomeInvalidCandidate     = "invalid_candidate"
	OutcomeUnavailable          = "unavailable"
)

// Metrics is safe to use as a nil pointer, which records nothing
type Metrics struct {
	casts        *prometheus.CounterVec
	castDuration prometheus.Histogram
}

// NewMetrics registers the ledger's metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		casts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainchoice_ballot_casts_total",
			Help: "Ballot cast attempts by outcome",
		}, []string{"outcome"}),
		castDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainchoice_ballot_cast_duration_seconds",
			Help:    "Time spent validating and storing a ballot",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeCast(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.casts.WithLabelValues(Outcome(err)).Inc()
	if elapsed > 0 {
		m.castDuration.Observe(elapsed.Seconds())
	}
}

// Outcome maps a cast error to its metric label
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, ErrAlreadyVoted):
		return OutcomeAlreadyVoted
	case errors.Is(err, ErrVoterNotEligible):
		return OutcomeNotEligible
	case errors.Is(err, ErrConstituencyMismatch):
		return OutcomeConstituencyMismatch
	case errors.Is(err, ErrInvalidCandidate):
		return OutcomeInvalidCandidate
	default:
		return OutcomeUnavailable
	}
}
