// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/registry"
	"github.com/dabekoe/chain-choice-voting/tally"
)

// errorStatus maps domain errors to HTTP status codes. Unknown errors are 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrVoterNotEligible),
		errors.Is(err, ledger.ErrConstituencyMismatch),
		errors.Is(err, registry.ErrVoterInactive):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidCandidate),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, registry.ErrInvalidInput),
		errors.Is(err, registry.ErrInvalidCode),
		errors.Is(err, tally.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrAlreadyVoted),
		errors.Is(err, catalog.ErrElectionExists),
		errors.Is(err, catalog.ErrCandidateHasBallots),
		errors.Is(err, catalog.ErrElectionChange),
		errors.Is(err, registry.ErrVoterExists),
		errors.Is(err, registry.ErrAlreadyVerified),
		errors.Is(err, registry.ErrAdminExists):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrElectionNotFound),
		errors.Is(err, catalog.ErrCandidateNotFound),
		errors.Is(err, registry.ErrVoterNotFound),
		errors.Is(err, registry.ErrAdminNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, registry.ErrCodeExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, ledger.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, err error, op string) {
	status := errorStatus(err)
	switch status {
	case http.StatusInternalServerError:
		slog.Error(op+" failed", "error", err)
		middleware.ErrorResponse(w, status, "Internal error")
	case http.StatusServiceUnavailable:
		slog.Error(op+" failed", "error", err)
		w.Header().Set("Retry-After", "1")
		middleware.ErrorResponse(w, status, ledger.ErrPersistenceUnavailable.Error())
	default:
		middleware.ErrorResponse(w, status, err.Error())
	}
}
