// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/tally"
	"github.com/dabekoe/chain-choice-voting/testutil"
)

func TestCreateCandidate(t *testing.T) {
	env := setupEnv(t)
	handler := NewCandidateHandler(env.catalog)
	testutil.CreateTestElection(t, env.db, models.ElectionParliamentary, "TAMALE CENTRAL")

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "presidential candidate",
			body:           models.CandidateRequest{Name: "Ama Mensah", Party: "PPA", Type: "presidential"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "parliamentary candidate",
			body:           models.CandidateRequest{Name: "Abdul Rahman", Party: "NDP", Type: "Parliamentary", Constituency: "tamale central"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown constituency",
			body:           models.CandidateRequest{Name: "Nobody", Type: "parliamentary", Constituency: "NOWHERE"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing constituency",
			body:           models.CandidateRequest{Name: "Nobody", Type: "parliamentary"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			body:           models.CandidateRequest{Type: "presidential"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown type",
			body:           models.CandidateRequest{Name: "X", Type: "mayoral"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asAdmin(testutil.MakeRequest("POST", "/api/candidates", tt.body, nil), "root")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusCreated {
				var cand models.Candidate
				testutil.AssertJSON(t, w, &cand)
				if cand.ID == "" || cand.ElectionID == "" {
					t.Errorf("Expected IDs in response, got %+v", cand)
				}
			}
		})
	}
}

func TestCreateCandidate_Multipart(t *testing.T) {
	env := setupEnv(t)
	handler := NewCandidateHandler(env.catalog)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("name", "Kofi Boateng")
	mw.WriteField("party", "NDP")
	mw.WriteField("type", "presidential")
	part, err := mw.CreateFormFile("image", "uploads/kofi.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("\x89PNG"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/candidates", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	handler.Create(w, asAdmin(req, "root"))

	testutil.AssertStatus(t, w, http.StatusCreated)
	var cand models.Candidate
	testutil.AssertJSON(t, w, &cand)
	if cand.Name != "Kofi Boateng" || cand.Image != "kofi.png" {
		t.Errorf("Unexpected candidate %+v", cand)
	}
}

func TestListCandidates(t *testing.T) {
	env := setupEnv(t)
	handler := NewCandidateHandler(env.catalog)

	pres := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "P")
	ho := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "HO", "H")
	kpone := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "KPONE", "K")
	retired := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "HO", "R")
	if _, err := env.catalog.RetireCandidate(context.Background(), retired.ID); err != nil {
		t.Fatalf("RetireCandidate failed: %v", err)
	}

	tests := []struct {
		query          string
		expectedStatus int
		expectedIDs    []string
	}{
		{"", http.StatusOK, []string{pres.ID, ho.ID, kpone.ID}},
		{"?type=presidential", http.StatusOK, []string{pres.ID}},
		{"?type=parliamentary&constituency=ho", http.StatusOK, []string{ho.ID}},
		{"?type=parliamentary&constituency=ho&includeRetired=true", http.StatusOK, []string{ho.ID, retired.ID}},
		{"?type=mayoral", http.StatusBadRequest, nil},
		{"?includeRetired=maybe", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, httptest.NewRequest("GET", "/api/candidates"+tt.query, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp models.CandidatesResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Candidates) != len(tt.expectedIDs) {
				t.Fatalf("Expected %d candidates, got %d", len(tt.expectedIDs), len(resp.Candidates))
			}
			for i, c := range resp.Candidates {
				if c.ID != tt.expectedIDs[i] {
					t.Errorf("Position %d: expected %s, got %s", i, tt.expectedIDs[i], c.ID)
				}
			}
		})
	}
}

func TestUpdateCandidate(t *testing.T) {
	env := setupEnv(t)
	handler := NewCandidateHandler(env.catalog)
	ctx := context.Background()

	testutil.CreateTestElection(t, env.db, models.ElectionParliamentary, "KPONE")
	cand := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "HO", "Old Name")
	voted := testutil.CreateTestCandidate(t, env.db, models.ElectionParliamentary, "HO", "Voted")
	testutil.CreateTestVoter(t, env.db, "V1", "HO", true)
	if _, err := env.ledger.Cast(ctx, "V1", models.ParliamentaryScope("HO"), voted.ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	tests := []struct {
		name           string
		id             string
		body           models.CandidateRequest
		expectedStatus int
	}{
		{"rename", cand.ID, models.CandidateRequest{Name: "New Name"}, http.StatusOK},
		{"restate own election", cand.ID, models.CandidateRequest{Type: "parliamentary", Constituency: "ho"}, http.StatusOK},
		{"move without ballots", cand.ID, models.CandidateRequest{Constituency: "KPONE"}, http.StatusConflict},
		{"move with ballots", voted.ID, models.CandidateRequest{Constituency: "KPONE"}, http.StatusConflict},
		{"move to missing election", cand.ID, models.CandidateRequest{Constituency: "NOWHERE"}, http.StatusConflict},
		{"unknown candidate", "missing", models.CandidateRequest{Name: "X"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/api/candidates/"+tt.id, tt.body, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.Update(w, asAdmin(req, "root"))

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	got, err := env.catalog.GetCandidate(ctx, cand.ID)
	if err != nil {
		t.Fatalf("GetCandidate failed: %v", err)
	}
	if got.Name != "New Name" || got.Constituency != "HO" {
		t.Errorf("Expected renamed candidate still in HO, got %+v", got)
	}
}

func TestUpdateCandidate_ConcurrentWithDelete(t *testing.T) {
	env := setupEnv(t)
	handler := NewCandidateHandler(env.catalog)
	cand := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "Racer")

	var wg sync.WaitGroup
	var updateCode, deleteCode int
	wg.Add(2)
	go func() {
		defer wg.Done()
		req := testutil.MakeRequest("PUT", "/api/candidates/"+cand.ID, models.CandidateRequest{Party: "NEW"}, nil)
		req.SetPathValue("id", cand.ID)
		w := httptest.NewRecorder()
		handler.Update(w, asAdmin(req, "root"))
		updateCode = w.Code
	}()
	go func() {
		defer wg.Done()
		req := httptest.NewRequest("DELETE", "/api/candidates/"+cand.ID, nil)
		req.SetPathValue("id", cand.ID)
		w := httptest.NewRecorder()
		handler.Delete(w, asAdmin(req, "root"))
		deleteCode = w.Code
	}()
	wg.Wait()

	// Either order is valid; an edit that loses the race reports 404
	if deleteCode != http.StatusOK {
		t.Errorf("Expected delete to succeed, got %d", deleteCode)
	}
	if updateCode != http.StatusOK && updateCode != http.StatusNotFound {
		t.Errorf("Expected update to succeed or report 404, got %d", updateCode)
	}
}

func TestDeleteAndRetireCandidate(t *testing.T) {
	env := setupEnv(t)
	handler := NewCandidateHandler(env.catalog)
	votingHandler := NewVotingHandler(env.ledger)
	ctx := context.Background()

	unused := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "Unused")
	voted := testutil.CreateTestCandidate(t, env.db, models.ElectionPresidential, "", "Voted")
	testutil.CreateTestVoter(t, env.db, "V1", "", true)
	testutil.CreateTestVoter(t, env.db, "V2", "", true)
	if _, err := env.ledger.Cast(ctx, "V1", models.ScopePresidential, voted.ID); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	call := func(method, id string, fn http.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/candidates/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		fn(w, asAdmin(req, "root"))
		return w
	}

	testutil.AssertStatus(t, call("DELETE", unused.ID, handler.Delete), http.StatusOK)
	testutil.AssertStatus(t, call("DELETE", unused.ID, handler.Delete), http.StatusNotFound)
	testutil.AssertStatus(t, call("DELETE", voted.ID, handler.Delete), http.StatusConflict)
	testutil.AssertStatus(t, call("POST", voted.ID, handler.Retire), http.StatusOK)
	testutil.AssertStatus(t, call("POST", "missing", handler.Retire), http.StatusNotFound)

	// Retired candidates keep their votes but take no new ones
	body := models.CastVoteRequest{CandidateID: voted.ID, ElectionType: "presidential"}
	w := httptest.NewRecorder()
	votingHandler.CastVote(w, asVoter(testutil.MakeRequest("POST", "/api/votes", body, nil), "V2"))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	rows, err := env.tally.Results(ctx, tally.Filter{Type: models.ElectionPresidential})
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if len(rows) != 1 || rows[0].VoteCount != 1 || !rows[0].Retired {
		t.Errorf("Expected retired candidate with 1 vote in results, got %+v", rows)
	}
}
