// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrElectionNotFound    = errors.New("election not found")
	ErrElectionExists      = errors.New("election already exists")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrCandidateHasBallots = errors.New("candidate has ballots")
	ErrElectionChange      = errors.New("candidate election cannot change")
)
