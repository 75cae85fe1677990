// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"fmt"
)

// Cast failures. All are permanent for the given input except
// ErrPersistenceUnavailable.
var (
	ErrVoterNotEligible       = errors.New("voter is not eligible to vote")
	ErrConstituencyMismatch   = errors.New("vote is outside the voter's constituency")
	ErrInvalidCandidate       = errors.New("candidate does not stand in this election")
	ErrAlreadyVoted           = errors.New("voter has already voted in this election")
	ErrPersistenceUnavailable = errors.New("ballot storage unavailable")
)

// Retryable reports whether the caller may retry a failed cast unchanged
func Retryable(err error) bool {
	return errors.Is(err, ErrPersistenceUnavailable)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceUnavailable, op, err)
}
