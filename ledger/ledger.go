// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/registry"
)

// Voters resolves voter eligibility. *registry.Registry implements it.
type Voters interface {
	Get(ctx context.Context, voterID string) (models.Voter, error)
}

// Candidates resolves candidates. *catalog.Catalog implements it.
type Candidates interface {
	GetCandidate(ctx context.Context, id string) (models.Candidate, error)
}

// Ledger accepts ballots. It is the only writer of the ballot store.
type Ledger struct {
	store      Store
	voters     Voters
	candidates Candidates
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Ledger)

func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock overrides the time source used for CastAt
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store Store, voters Voters, candidates Candidates, opts ...Option) *Ledger {
	l := &Ledger{
		store:      store,
		voters:     voters,
		candidates: candidates,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cast records one ballot for voterID in scope. Checks run in a fixed order
// and the first failure is returned: ErrVoterNotEligible,
// ErrConstituencyMismatch, ErrInvalidCandidate, ErrAlreadyVoted. The ballot
// is durable when Cast returns nil error.
func (l *Ledger) Cast(ctx context.Context, voterID, scope, candidateID string) (models.Ballot, error) {
	start := time.Now()
	ballot, err := l.cast(ctx, voterID, scope, candidateID)
	l.metrics.observeCast(err, time.Since(start))

	switch {
	case err == nil:
		l.logger.Info("ballot cast", "voter_id", voterID, "scope", ballot.Scope, "ballot_id", ballot.ID)
	case Retryable(err):
		l.logger.Error("ballot cast failed", "voter_id", voterID, "scope", scope, "error", err)
	default:
		l.logger.Info("ballot rejected", "voter_id", voterID, "scope", scope, "candidate_id", candidateID, "reason", err)
	}
	return ballot, err
}

func (l *Ledger) cast(ctx context.Context, voterID, scope, candidateID string) (models.Ballot, error) {
	voter, err := l.voters.Get(ctx, voterID)
	if errors.Is(err, registry.ErrVoterNotFound) {
		return models.Ballot{}, ErrVoterNotEligible
	}
	if err != nil {
		return models.Ballot{}, unavailable("load voter", err)
	}
	if !voter.Verified || !voter.Active {
		return models.Ballot{}, ErrVoterNotEligible
	}

	electionType, constituency, ok := models.ParseScope(scope)
	if !ok {
		return models.Ballot{}, fmt.Errorf("%w: unknown election scope %q", ErrInvalidCandidate, scope)
	}
	scope = models.ScopeFor(electionType, constituency)
	if electionType == models.ElectionParliamentary && voter.Constituency != constituency {
		return models.Ballot{}, ErrConstituencyMismatch
	}

	cand, err := l.candidates.GetCandidate(ctx, candidateID)
	if errors.Is(err, catalog.ErrCandidateNotFound) {
		return models.Ballot{}, ErrInvalidCandidate
	}
	if err != nil {
		return models.Ballot{}, unavailable("load candidate", err)
	}
	if cand.Scope() != scope || cand.Retired {
		return models.Ballot{}, ErrInvalidCandidate
	}

	// Fast path only; Insert is authoritative under concurrency
	voted, err := l.store.Has(ctx, voterID, scope)
	if err != nil {
		return models.Ballot{}, err
	}
	if voted {
		return models.Ballot{}, ErrAlreadyVoted
	}

	ballot := models.Ballot{
		ID:          uuid.NewString(),
		VoterID:     voterID,
		Scope:       scope,
		CandidateID: candidateID,
		CastAt:      l.now().UTC(),
	}
	if err := l.store.Insert(ctx, ballot); err != nil {
		return models.Ballot{}, err
	}
	return ballot, nil
}

// CastVote resolves the scope of an HTTP vote request and casts it. A
// parliamentary vote is scoped to the requested constituency, else the
// candidate's, else the voter's. An empty election type is taken from the
// candidate.
func (l *Ledger) CastVote(ctx context.Context, voterID string, req models.CastVoteRequest) (models.Ballot, error) {
	electionType := strings.ToLower(strings.TrimSpace(req.ElectionType))
	constituency := models.NormalizeConstituency(req.Constituency)

	if electionType == "" || (electionType == models.ElectionParliamentary && constituency == "") {
		cand, err := l.candidates.GetCandidate(ctx, req.CandidateID)
		switch {
		case err == nil:
			if electionType == "" {
				electionType = cand.Type
			}
			if electionType == models.ElectionParliamentary && constituency == "" {
				constituency = cand.Constituency
			}
		case errors.Is(err, catalog.ErrCandidateNotFound):
			// Reported by Cast after the eligibility checks
		default:
			return models.Ballot{}, unavailable("load candidate", err)
		}
	}

	if electionType == models.ElectionParliamentary && constituency == "" {
		voter, err := l.voters.Get(ctx, voterID)
		if err == nil {
			constituency = voter.Constituency
		}
	}

	var scope string
	switch electionType {
	case models.ElectionPresidential:
		scope = models.ScopePresidential
	case models.ElectionParliamentary:
		if constituency == "" {
			// Cast still reports eligibility first
			return l.castUnresolved(ctx, voterID, ErrConstituencyMismatch)
		}
		scope = models.ParliamentaryScope(constituency)
	default:
		return l.castUnresolved(ctx, voterID, ErrInvalidCandidate)
	}

	return l.Cast(ctx, voterID, scope, req.CandidateID)
}

// castUnresolved rejects a vote whose scope could not be determined. An
// ineligible voter is reported ahead of cause.
func (l *Ledger) castUnresolved(ctx context.Context, voterID string, cause error) (models.Ballot, error) {
	voter, err := l.voters.Get(ctx, voterID)
	switch {
	case errors.Is(err, registry.ErrVoterNotFound):
		err = ErrVoterNotEligible
	case err != nil:
		err = unavailable("load voter", err)
	case !voter.Verified || !voter.Active:
		err = ErrVoterNotEligible
	default:
		err = cause
	}
	l.metrics.observeCast(err, 0)
	return models.Ballot{}, err
}
