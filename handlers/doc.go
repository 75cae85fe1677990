// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the voting API.

# Handler Types

  - VoterHandler: registration, verification, login, deactivation
  - AdminHandler: admin login and account management
  - ElectionHandler: election listing and creation
  - CandidateHandler: candidate CRUD and retirement
  - VotingHandler: vote casting and vote status
  - ResultsHandler: tally results

Handlers wrap the domain components built by router.NewServices:

	votingHandler := handlers.NewVotingHandler(svc.Ledger)

# Errors

Domain errors map to status codes in one place (errors.go):

	VoterNotEligible, ConstituencyMismatch → 403
	InvalidCandidate                       → 400
	AlreadyVoted, CandidateHasBallots      → 409
	PersistenceUnavailable                 → 503 with Retry-After

Only 503 responses are worth retrying unchanged.
*/
package handlers
