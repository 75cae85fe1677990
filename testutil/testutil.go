// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dabekoe/chain-choice-voting/auth"
	"github.com/dabekoe/chain-choice-voting/cliparse"
	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/models"
)

// TestPassword is the password of every fixture voter and admin
const TestPassword = "test-password"

// SetupTestDB creates a fresh SQLite database with the full schema. The file
// lives in the test's temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  db.DialectSQLite,
		LedgerBackend: cliparse.LedgerSQL,
		TokenSecret:   "test-token-secret",
		TokenTTL:      time.Hour,
	}
}

// CreateTestVoter inserts a voter. An empty constituency leaves the voter
// without parliamentary eligibility.
func CreateTestVoter(t *testing.T, conn *sql.DB, voterID, constituency string, verified bool) models.Voter {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	voter := models.Voter{
		ID:           voterID,
		Name:         "Voter " + voterID,
		Email:        voterID + "@example.com",
		Phone:        "0240000000",
		Constituency: models.NormalizeConstituency(constituency),
		Verified:     verified,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	var c sql.NullString
	if voter.Constituency != "" {
		c = sql.NullString{String: voter.Constituency, Valid: true}
	}

	_, err = conn.Exec(`
		INSERT INTO voter (id, name, email, phone, constituency, password_hash, verified, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, voter.ID, voter.Name, voter.Email, voter.Phone, c, hash, verified, true, voter.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voter
}

// CreateTestElection returns the election for a type and constituency,
// creating it when missing
func CreateTestElection(t *testing.T, conn *sql.DB, electionType, constituency string) models.Election {
	t.Helper()

	election := models.Election{
		ID:        uuid.NewString(),
		Type:      electionType,
		CreatedAt: time.Now(),
	}
	if electionType == models.ElectionParliamentary {
		election.Constituency = models.NormalizeConstituency(constituency)
	}

	_, err := conn.Exec(`
		INSERT INTO election (id, type, constituency, scope, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scope) DO NOTHING
	`, election.ID, election.Type, election.Constituency, election.Scope(), election.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	err = conn.QueryRow(`SELECT id FROM election WHERE scope = $1`, election.Scope()).Scan(&election.ID)
	if err != nil {
		t.Fatalf("Failed to load test election: %v", err)
	}
	return election
}

// CreateTestCandidate registers a candidate, creating its election if needed
func CreateTestCandidate(t *testing.T, conn *sql.DB, electionType, constituency, name string) models.Candidate {
	t.Helper()

	election := CreateTestElection(t, conn, electionType, constituency)
	cand := models.Candidate{
		ID:           uuid.NewString(),
		ElectionID:   election.ID,
		Name:         name,
		Party:        "Party " + name,
		Type:         election.Type,
		Constituency: election.Constituency,
		CreatedAt:    time.Now(),
	}

	err := conn.QueryRow(`
		INSERT INTO candidate (id, election_id, name, party, image, retired, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`, cand.ID, cand.ElectionID, cand.Name, cand.Party, "", false, cand.CreatedAt, cand.CreatedAt).Scan(&cand.Seq)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return cand
}

// SubmitTestBallot writes a ballot directly, bypassing the ledger's checks
func SubmitTestBallot(t *testing.T, conn *sql.DB, voterID, scope, candidateID string) string {
	t.Helper()

	ballotID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO ballot (id, voter_id, scope, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ballotID, voterID, scope, candidateID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// BearerHeader returns an Authorization header carrying a token for subject
func BearerHeader(t *testing.T, cfg cliparse.Config, subject, role string) map[string]string {
	t.Helper()

	token, err := auth.IssueToken(subject, role, cfg.TokenSecret, cfg.TokenTTL, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
