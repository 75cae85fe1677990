// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/models"
)

// BallotCounter reports how many ballots reference a candidate. The ballot
// ledger implements it; the catalog uses it to protect tally history.
type BallotCounter interface {
	CountForCandidate(ctx context.Context, candidateID string) (int, error)
}

// Catalog owns the lifecycle of elections and candidates
type Catalog struct {
	db      *sql.DB
	ballots BallotCounter
	now     func() time.Time

	// editMu serializes candidate edits and deletes
	editMu sync.Mutex
}

func New(conn *sql.DB, ballots BallotCounter) *Catalog {
	return &Catalog{db: conn, ballots: ballots, now: time.Now}
}

// EnsurePresidential creates the single national election if it is missing
func (c *Catalog) EnsurePresidential(ctx context.Context) (models.Election, error) {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO election (id, type, constituency, scope, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scope) DO NOTHING
	`, uuid.NewString(), models.ElectionPresidential, "", models.ScopePresidential, c.now())
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to ensure presidential election: %w", err)
	}
	return c.ElectionByScope(ctx, models.ScopePresidential)
}

// CreateElection registers a parliamentary election for a constituency.
// The presidential election is created by EnsurePresidential.
func (c *Catalog) CreateElection(ctx context.Context, electionType, constituency string) (models.Election, error) {
	constituency = models.NormalizeConstituency(constituency)
	switch {
	case electionType == models.ElectionPresidential:
		return models.Election{}, fmt.Errorf("%w: the presidential election already exists", ErrElectionExists)
	case electionType != models.ElectionParliamentary:
		return models.Election{}, fmt.Errorf("%w: unknown election type %q", ErrInvalidInput, electionType)
	case constituency == "":
		return models.Election{}, fmt.Errorf("%w: constituency is required", ErrInvalidInput)
	}

	election := models.Election{
		ID:           uuid.NewString(),
		Type:         electionType,
		Constituency: constituency,
		CreatedAt:    c.now(),
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO election (id, type, constituency, scope, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, election.ID, election.Type, election.Constituency, election.Scope(), election.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Election{}, ErrElectionExists
		}
		return models.Election{}, fmt.Errorf("failed to insert election: %w", err)
	}

	slog.Info("election created", "election_id", election.ID, "scope", election.Scope())
	return election, nil
}

// ElectionByScope looks up the election voted in scope
func (c *Catalog) ElectionByScope(ctx context.Context, scope string) (models.Election, error) {
	var e models.Election
	err := c.db.QueryRowContext(ctx, `
		SELECT id, type, constituency, created_at FROM election WHERE scope = $1
	`, scope).Scan(&e.ID, &e.Type, &e.Constituency, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, ErrElectionNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

// ListElections returns the presidential election first, then parliamentary
// elections by constituency
func (c *Catalog) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, type, constituency, created_at
		FROM election
		ORDER BY type DESC, constituency
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Type, &e.Constituency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}
