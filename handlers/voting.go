// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/models"
)

type VotingHandler struct {
	ledger *ledger.Ledger
}

func NewVotingHandler(l *ledger.Ledger) *VotingHandler {
	return &VotingHandler{ledger: l}
}

// CastVote handles POST /api/votes. The voter is the authenticated caller,
// never a field of the request.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok || id.Role != models.RoleVoter {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Voter authentication required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.CandidateID = strings.TrimSpace(req.CandidateID)
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidateId is required")
		return
	}

	ballot, err := h.ledger.CastVote(r.Context(), id.Subject, req)
	if err != nil {
		writeError(w, err, "cast vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		Message:  "Vote cast successfully",
		BallotID: ballot.ID,
	})
}

// Status handles GET /api/votes/status
func (h *VotingHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok || id.Role != models.RoleVoter {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Voter authentication required")
		return
	}

	status, err := h.ledger.Status(r.Context(), id.Subject)
	if err != nil {
		writeError(w, err, "vote status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}
