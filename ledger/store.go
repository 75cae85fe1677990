// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"strings"

	"github.com/dabekoe/chain-choice-voting/models"
)

// Store persists ballots. Implementations must make Insert a single atomic
// conditional write keyed on (voter, scope): exactly one of any number of
// concurrent inserts for the same pair succeeds and the rest return
// ErrAlreadyVoted. Reads observe committed ballots only.
type Store interface {
	Insert(ctx context.Context, b models.Ballot) error
	Has(ctx context.Context, voterID, scope string) (bool, error)
	ScopesForVoter(ctx context.Context, voterID string) ([]string, error)
	CountByCandidate(ctx context.Context, f ScopeFilter) (map[string]int, error)
	CountForCandidate(ctx context.Context, candidateID string) (int, error)
	Close() error
}

// ScopeFilter selects ballots by scope. Scope matches exactly and wins over
// Prefix; the zero value selects every ballot.
type ScopeFilter struct {
	Scope  string
	Prefix string
}

// FilterFor builds the filter for an election type and optional constituency
func FilterFor(electionType, constituency string) ScopeFilter {
	switch electionType {
	case models.ElectionPresidential:
		return ScopeFilter{Scope: models.ScopePresidential}
	case models.ElectionParliamentary:
		if models.NormalizeConstituency(constituency) != "" {
			return ScopeFilter{Scope: models.ParliamentaryScope(constituency)}
		}
		return ScopeFilter{Prefix: models.ParliamentaryScope("")}
	}
	return ScopeFilter{}
}

// Match reports whether scope is selected
func (f ScopeFilter) Match(scope string) bool {
	if f.Scope != "" {
		return scope == f.Scope
	}
	return strings.HasPrefix(scope, f.Prefix)
}
