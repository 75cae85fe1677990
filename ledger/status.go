// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"

	"github.com/dabekoe/chain-choice-voting/models"
)

// Status reports which scopes a voter has a committed ballot in. A voter
// with no ballots, known or not, gets the zero status.
func (l *Ledger) Status(ctx context.Context, voterID string) (models.VoteStatus, error) {
	scopes, err := l.store.ScopesForVoter(ctx, voterID)
	if err != nil {
		return models.VoteStatus{}, err
	}

	status := models.VoteStatus{Parliamentary: []string{}}
	for _, scope := range scopes {
		electionType, constituency, ok := models.ParseScope(scope)
		if !ok {
			continue
		}
		if electionType == models.ElectionPresidential {
			status.Presidential = true
		} else {
			status.Parliamentary = append(status.Parliamentary, constituency)
		}
	}
	return status, nil
}

// HasVoted reports whether voterID has a committed ballot in scope
func (l *Ledger) HasVoted(ctx context.Context, voterID, scope string) (bool, error) {
	return l.store.Has(ctx, voterID, scope)
}

// CountForCandidate lets the ledger stand in as catalog.BallotCounter
func (l *Ledger) CountForCandidate(ctx context.Context, candidateID string) (int, error) {
	return l.store.CountForCandidate(ctx, candidateID)
}
