// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/testutil"
)

func TestGetResults(t *testing.T) {
	env := setupEnv(t)
	handler := NewResultsHandler(env.tally)
	ctx := context.Background()

	a := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "A")
	b := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "B")
	local := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "TAMALE", "L")

	for voterID, candidateID := range map[string]string{"V1": b.ID, "V2": a.ID, "V3": a.ID} {
		testutil.CreateTestVoter(t, env.db, voterID, "TAMALE", true)
		if _, err := env.ledger.Cast(ctx, voterID, models.ScopePresidential, candidateID); err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
	}
	if _, err := env.ledger.Cast(ctx, "V1", models.ParliamentaryScope("TAMALE"), local.ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedIDs    []string
		expectedVotes  []int
	}{
		{"presidential", "?type=presidential", http.StatusOK, []string{a.ID, b.ID}, []int{2, 1}},
		{"constituency", "?type=parliamentary&constituency=tamale", http.StatusOK, []string{local.ID}, []int{1}},
		{"all", "", http.StatusOK, []string{a.ID, b.ID, local.ID}, []int{2, 1, 1}},
		{"unknown type", "?type=mayoral", http.StatusBadRequest, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/votes/results"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetResults(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.ResultsResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Results) != len(tt.expectedIDs) {
				t.Fatalf("Expected %d rows, got %d", len(tt.expectedIDs), len(resp.Results))
			}
			for i, row := range resp.Results {
				if row.CandidateID != tt.expectedIDs[i] || row.VoteCount != tt.expectedVotes[i] {
					t.Errorf("Row %d: expected %s with %d votes, got %s with %d",
						i, tt.expectedIDs[i], tt.expectedVotes[i], row.CandidateID, row.VoteCount)
				}
			}
			if !resp.Results[0].Leader {
				t.Error("Expected first row to be flagged as leader")
			}
		})
	}
}
