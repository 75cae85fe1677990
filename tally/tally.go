// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/models"
)

var ErrInvalidFilter = errors.New("invalid results filter")

// Filter scopes a results query. A constituency without a type implies
// parliamentary.
type Filter struct {
	Type         string
	Constituency string
}

// CandidateLister lists candidates in registration order
type CandidateLister interface {
	ListCandidates(ctx context.Context, f catalog.Filter) ([]models.Candidate, error)
}

// BallotCounter counts committed ballots per candidate
type BallotCounter interface {
	CountByCandidate(ctx context.Context, f ledger.ScopeFilter) (map[string]int, error)
}

// Engine derives results from the ballot ledger on every query. It holds no
// counts of its own.
type Engine struct {
	candidates CandidateLister
	ballots    BallotCounter
	queries    *prometheus.CounterVec
	logger     *slog.Logger
}

// New creates an engine. reg may be nil to skip metrics.
func New(candidates CandidateLister, ballots BallotCounter, reg prometheus.Registerer) *Engine {
	e := &Engine{candidates: candidates, ballots: ballots, logger: slog.Default()}
	if reg != nil {
		e.queries = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "chainchoice_results_queries_total",
			Help: "Results queries by election type",
		}, []string{"type"})
	}
	return e
}

// Results returns one row per candidate matching f, retired candidates
// included, sorted by vote count descending with ties in registration order.
// Rows holding the highest non-zero count within their scope are leaders.
func (e *Engine) Results(ctx context.Context, f Filter) ([]models.TallyRow, error) {
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	f.Constituency = models.NormalizeConstituency(f.Constituency)
	if f.Type == "" && f.Constituency != "" {
		f.Type = models.ElectionParliamentary
	}
	if f.Type != "" && !models.ValidElectionType(f.Type) {
		return nil, fmt.Errorf("%w: unknown election type %q", ErrInvalidFilter, f.Type)
	}
	if f.Type == models.ElectionPresidential {
		f.Constituency = ""
	}

	candidates, err := e.candidates.ListCandidates(ctx, catalog.Filter{
		Type:           f.Type,
		Constituency:   f.Constituency,
		IncludeRetired: true,
	})
	if err != nil {
		return nil, err
	}

	counts, err := e.ballots.CountByCandidate(ctx, ledger.FilterFor(f.Type, f.Constituency))
	if err != nil {
		return nil, err
	}

	if e.queries != nil {
		label := f.Type
		if label == "" {
			label = "all"
		}
		e.queries.WithLabelValues(label).Inc()
	}

	e.reportOrphans(ctx, candidates, counts)
	return rank(candidates, counts), nil
}

// reportOrphans warns about counted ballots whose candidate is not listed.
// The badger ledger has no foreign key, so a candidate deleted while a cast
// was in flight leaves its ballot behind. Those ballots are not shown.
func (e *Engine) reportOrphans(ctx context.Context, candidates []models.Candidate, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	listed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		listed[c.ID] = struct{}{}
	}

	orphans := make([]string, 0)
	for id := range counts {
		if _, ok := listed[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		e.logger.WarnContext(ctx, "ballots counted for unlisted candidate",
			"candidate_id", id,
			"votes", counts[id],
		)
	}
}

// rank expects candidates in registration order
func rank(candidates []models.Candidate, counts map[string]int) []models.TallyRow {
	rows := make([]models.TallyRow, 0, len(candidates))
	scopes := make([]string, 0, len(candidates))
	best := make(map[string]int)

	for _, c := range candidates {
		n := counts[c.ID]
		rows = append(rows, models.TallyRow{
			CandidateID:  c.ID,
			Name:         c.Name,
			Party:        c.Party,
			Type:         c.Type,
			Constituency: c.Constituency,
			VoteCount:    n,
			Retired:      c.Retired,
		})
		scope := c.Scope()
		scopes = append(scopes, scope)
		if n > best[scope] {
			best[scope] = n
		}
	}

	for i := range rows {
		if top := best[scopes[i]]; top > 0 && rows[i].VoteCount == top {
			rows[i].Leader = true
		}
	}

	// Stable sort keeps registration order among equal counts
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].VoteCount > rows[j].VoteCount
	})
	return rows
}
