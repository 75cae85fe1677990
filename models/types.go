package models

import (
	"strings"
	"time"
)

// Election type constants
const (
	ElectionPresidential  = "presidential"
	ElectionParliamentary = "parliamentary"
)

// Account role constants
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// ScopePresidential is the single national electoral scope.
const ScopePresidential = "presidential"

const parliamentaryPrefix = ElectionParliamentary + ":"

// ValidElectionType reports whether t names a known election type
func ValidElectionType(t string) bool {
	return t == ElectionPresidential || t == ElectionParliamentary
}

// NormalizeConstituency trims and upper-cases a constituency name
func NormalizeConstituency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

// ParliamentaryScope returns the electoral scope for a constituency
func ParliamentaryScope(constituency string) string {
	return parliamentaryPrefix + NormalizeConstituency(constituency)
}

// ScopeFor returns the electoral scope of an election
func ScopeFor(electionType, constituency string) string {
	if electionType == ElectionPresidential {
		return ScopePresidential
	}
	return ParliamentaryScope(constituency)
}

// ParseScope splits a scope into election type and normalised constituency.
// ok is false for anything that is not a well-formed scope.
func ParseScope(scope string) (electionType, constituency string, ok bool) {
	if scope == ScopePresidential {
		return ElectionPresidential, "", true
	}
	if c, found := strings.CutPrefix(scope, parliamentaryPrefix); found {
		if c = NormalizeConstituency(c); c != "" {
			return ElectionParliamentary, c, true
		}
	}
	return "", "", false
}

// Request types

type RegisterVoterRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	VoterID      string `json:"voterId"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Constituency string `json:"constituency"`
}

type VerifyVoterRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

type VoterLoginRequest struct {
	VoterID  string `json:"voterId"`
	Password string `json:"password"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type CreateElectionRequest struct {
	Type         string `json:"type"`
	Constituency string `json:"constituency"`
}

// CandidateRequest is used for both create and update; fields arrive as
// multipart form values or JSON.
type CandidateRequest struct {
	Name         string `json:"name"`
	Party        string `json:"party"`
	Type         string `json:"type"`
	Constituency string `json:"constituency"`
	Image        string `json:"image"`
}

type CastVoteRequest struct {
	CandidateID  string `json:"candidateId"`
	ElectionType string `json:"electionType"`
	Constituency string `json:"constituency,omitempty"`
}

// Response types

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type CastVoteResponse struct {
	Message  string `json:"message"`
	BallotID string `json:"ballotId"`
}

type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type ElectionsResponse struct {
	Elections []Election `json:"elections"`
}

type ResultsResponse struct {
	Results []TallyRow `json:"results"`
}

type AdminsResponse struct {
	Admins []Admin `json:"admins"`
}

// Domain types

type Voter struct {
	ID           string    `json:"voterId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Constituency string    `json:"constituency,omitempty"` // empty: not eligible for parliamentary voting
	Verified     bool      `json:"verified"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Admin struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type Election struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Constituency string    `json:"constituency,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Scope returns the electoral scope the election is voted in
func (e Election) Scope() string {
	return ScopeFor(e.Type, e.Constituency)
}

type Candidate struct {
	ID           string    `json:"id"`
	ElectionID   string    `json:"electionId"`
	Name         string    `json:"name"`
	Party        string    `json:"party"`
	Type         string    `json:"type"`
	Constituency string    `json:"constituency,omitempty"`
	Image        string    `json:"image,omitempty"`
	Retired      bool      `json:"retired"`
	Seq          int64     `json:"-"` // registration order, tally tie-break
	CreatedAt    time.Time `json:"createdAt"`
}

// Scope returns the electoral scope the candidate stands in
func (c Candidate) Scope() string {
	return ScopeFor(c.Type, c.Constituency)
}

// Ballot is immutable once cast
type Ballot struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"-"`
	Scope       string    `json:"scope"`
	CandidateID string    `json:"candidateId"`
	CastAt      time.Time `json:"castAt"`
}

type TallyRow struct {
	CandidateID  string `json:"candidateId"`
	Name         string `json:"name"`
	Party        string `json:"party"`
	Type         string `json:"type"`
	Constituency string `json:"constituency,omitempty"`
	VoteCount    int    `json:"voteCount"`
	Leader       bool   `json:"leader"`
	Retired      bool   `json:"retired,omitempty"`
}

type VoteStatus struct {
	Presidential  bool     `json:"presidential"`
	Parliamentary []string `json:"parliamentary"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
