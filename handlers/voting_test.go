// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/testutil"
)

func TestCastVote(t *testing.T) {
	env := setupEnv(t)
	handler := NewVotingHandler(env.ledger)

	testutil.CreateTestVoter(t, env.db, "V1", "AYAWASO-WEST", true)
	testutil.CreateTestVoter(t, env.db, "V2", "TAMALE", true)
	testutil.CreateTestVoter(t, env.db, "V3", "AYAWASO-WEST", false)
	c1 := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "AYAWASO-WEST", "C1")
	pres := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "P")

	tests := []struct {
		name           string
		voterID        string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "parliamentary vote in own constituency",
			voterID:        "V1",
			body:           models.CastVoteRequest{CandidateID: c1.ID, ElectionType: "parliamentary"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "repeat is already voted",
			voterID:        "V1",
			body:           models.CastVoteRequest{CandidateID: c1.ID, ElectionType: "parliamentary"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "other constituency",
			voterID:        "V2",
			body:           models.CastVoteRequest{CandidateID: c1.ID, ElectionType: "parliamentary"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unverified voter",
			voterID:        "V3",
			body:           models.CastVoteRequest{CandidateID: pres.ID, ElectionType: "presidential"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "candidate from another election",
			voterID:        "V2",
			body:           models.CastVoteRequest{CandidateID: c1.ID, ElectionType: "presidential"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing candidate",
			voterID:        "V2",
			body:           models.CastVoteRequest{ElectionType: "presidential"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "presidential vote",
			voterID:        "V2",
			body:           models.CastVoteRequest{CandidateID: pres.ID, ElectionType: "presidential"},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asVoter(testutil.MakeRequest("POST", "/api/votes", tt.body, nil), tt.voterID)
			w := httptest.NewRecorder()

			handler.CastVote(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var resp models.CastVoteResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.BallotID == "" || resp.Message == "" {
					t.Errorf("Unexpected response %+v", resp)
				}
			}
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := asVoter(httptest.NewRequest("POST", "/api/votes", strings.NewReader("{")), "V1")
		w := httptest.NewRecorder()
		handler.CastVote(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("no identity", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/votes", models.CastVoteRequest{CandidateID: pres.ID}, nil)
		w := httptest.NewRecorder()
		handler.CastVote(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestVoteStatus(t *testing.T) {
	env := setupEnv(t)
	handler := NewVotingHandler(env.ledger)

	testutil.CreateTestVoter(t, env.db, "V1", "AYAWASO-WEST", true)
	c1 := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "AYAWASO-WEST", "C1")
	pres := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "P")

	status := func() models.VoteStatus {
		t.Helper()
		w := httptest.NewRecorder()
		handler.Status(w, asVoter(httptest.NewRequest("GET", "/api/votes/status", nil), "V1"))
		testutil.AssertStatus(t, w, http.StatusOK)
		var s models.VoteStatus
		testutil.AssertJSON(t, w, &s)
		return s
	}

	if s := status(); s.Presidential || len(s.Parliamentary) != 0 {
		t.Errorf("Expected no votes before casting, got %+v", s)
	}

	ctx := context.Background()
	if _, err := env.ledger.Cast(ctx, "V1", models.ScopePresidential, pres.ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if s := status(); !s.Presidential || len(s.Parliamentary) != 0 {
		t.Errorf("Expected presidential only, got %+v", s)
	}

	if _, err := env.ledger.Cast(ctx, "V1", models.ParliamentaryScope("AYAWASO-WEST"), c1.ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if s := status(); !s.Presidential || len(s.Parliamentary) != 1 || s.Parliamentary[0] != "AYAWASO-WEST" {
		t.Errorf("Expected both votes, got %+v", s)
	}
}

// unavailableStore fails every operation
type unavailableStore struct{}

func (unavailableStore) err() error {
	return fmt.Errorf("%w: connection refused", ledger.ErrPersistenceUnavailable)
}
func (s unavailableStore) Insert(context.Context, models.Ballot) error { return s.err() }
func (s unavailableStore) Has(context.Context, string, string) (bool, error) {
	return false, s.err()
}
func (s unavailableStore) ScopesForVoter(context.Context, string) ([]string, error) {
	return nil, s.err()
}
func (s unavailableStore) CountByCandidate(context.Context, ledger.ScopeFilter) (map[string]int, error) {
	return nil, s.err()
}
func (s unavailableStore) CountForCandidate(context.Context, string) (int, error) {
	return 0, s.err()
}
func (unavailableStore) Close() error { return nil }

func TestCastVote_StorageUnavailable(t *testing.T) {
	env := setupEnv(t)
	handler := NewVotingHandler(ledger.New(unavailableStore{}, env.registry, env.catalog))

	testutil.CreateTestVoter(t, env.db, "V1", "", true)
	pres := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "P")

	req := asVoter(testutil.MakeRequest("POST", "/api/votes", models.CastVoteRequest{CandidateID: pres.ID, ElectionType: "presidential"}, nil), "V1")
	w := httptest.NewRecorder()
	handler.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on 503")
	}

	w = httptest.NewRecorder()
	handler.Status(w, asVoter(httptest.NewRequest("GET", "/api/votes/status", nil), "V1"))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}
