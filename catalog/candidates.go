// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/models"
)

// Filter narrows candidate listings. Empty fields match everything.
type Filter struct {
	Type           string
	Constituency   string
	IncludeRetired bool
}

const candidateColumns = `
	c.seq, c.id, c.election_id, c.name, c.party, c.image, c.retired, c.created_at,
	e.type, e.constituency
`

// CreateCandidate registers a candidate in an existing election
func (c *Catalog) CreateCandidate(ctx context.Context, req models.CandidateRequest) (models.Candidate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Candidate{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !models.ValidElectionType(req.Type) {
		return models.Candidate{}, fmt.Errorf("%w: type must be presidential or parliamentary", ErrInvalidInput)
	}

	election, err := c.resolveElection(ctx, req.Type, req.Constituency)
	if err != nil {
		return models.Candidate{}, err
	}

	cand := models.Candidate{
		ID:           uuid.NewString(),
		ElectionID:   election.ID,
		Name:         name,
		Party:        strings.TrimSpace(req.Party),
		Type:         election.Type,
		Constituency: election.Constituency,
		Image:        strings.TrimSpace(req.Image),
		CreatedAt:    c.now(),
	}

	err = c.db.QueryRowContext(ctx, `
		INSERT INTO candidate (id, election_id, name, party, image, retired, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`, cand.ID, cand.ElectionID, cand.Name, cand.Party, cand.Image, false, cand.CreatedAt, cand.CreatedAt).Scan(&cand.Seq)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return models.Candidate{}, ErrElectionNotFound
		}
		return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
	}

	slog.Info("candidate created", "candidate_id", cand.ID, "scope", cand.Scope())
	return cand, nil
}

// GetCandidate returns a candidate with its election's type and constituency
func (c *Catalog) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate c
		JOIN election e ON e.id = c.election_id
		WHERE c.id = $1
	`, id)

	cand, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return cand, nil
}

// ListCandidates returns candidates in registration order
func (c *Catalog) ListCandidates(ctx context.Context, f Filter) ([]models.Candidate, error) {
	var where []string
	var args []any

	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("e.type = $%d", len(args)))
	}
	if constituency := models.NormalizeConstituency(f.Constituency); constituency != "" {
		args = append(args, constituency)
		where = append(where, fmt.Sprintf("e.constituency = $%d", len(args)))
	}
	if !f.IncludeRetired {
		args = append(args, false)
		where = append(where, fmt.Sprintf("c.retired = $%d", len(args)))
	}

	query := `SELECT ` + candidateColumns + ` FROM candidate c JOIN election e ON e.id = c.election_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.seq"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, cand)
	}
	return candidates, rows.Err()
}

// UpdateCandidate applies the non-empty fields of req. Concurrent edits are
// last-writer-wins; editing a candidate deleted in the meantime fails with
// ErrCandidateNotFound. A candidate's election is fixed at creation, so type
// and constituency may only restate it.
func (c *Catalog) UpdateCandidate(ctx context.Context, id string, req models.CandidateRequest) (models.Candidate, error) {
	c.editMu.Lock()
	defer c.editMu.Unlock()

	cand, err := c.GetCandidate(ctx, id)
	if err != nil {
		return models.Candidate{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		cand.Name = name
	}
	if party := strings.TrimSpace(req.Party); party != "" {
		cand.Party = party
	}
	if image := strings.TrimSpace(req.Image); image != "" {
		cand.Image = image
	}

	if req.Type != "" || req.Constituency != "" {
		electionType := req.Type
		if electionType == "" {
			electionType = cand.Type
		}
		if !models.ValidElectionType(electionType) {
			return models.Candidate{}, fmt.Errorf("%w: type must be presidential or parliamentary", ErrInvalidInput)
		}
		constituency := req.Constituency
		if constituency == "" && electionType == cand.Type {
			constituency = cand.Constituency
		}
		if models.ScopeFor(electionType, constituency) != cand.Scope() {
			return models.Candidate{}, ErrElectionChange
		}
	}

	res, err := c.db.ExecContext(ctx, `
		UPDATE candidate
		SET name = $1, party = $2, image = $3, updated_at = $4
		WHERE id = $5
	`, cand.Name, cand.Party, cand.Image, c.now(), cand.ID)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to update candidate: %w", err)
	}
	if err := expectRow(res); err != nil {
		return models.Candidate{}, err
	}

	slog.Info("candidate updated", "candidate_id", cand.ID)
	return cand, nil
}

// DeleteCandidate removes a candidate that has never received a ballot.
// Candidates with ballots must be retired instead.
func (c *Catalog) DeleteCandidate(ctx context.Context, id string) error {
	c.editMu.Lock()
	defer c.editMu.Unlock()

	if err := c.ensureNoBallots(ctx, id); err != nil {
		return err
	}

	res, err := c.db.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id)
	if err != nil {
		// The ballot foreign key catches ballots cast after the count
		if db.IsForeignKeyViolation(err) {
			return ErrCandidateHasBallots
		}
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if err := expectRow(res); err != nil {
		return err
	}

	slog.Info("candidate deleted", "candidate_id", id)
	return nil
}

// RetireCandidate closes a candidate to new ballots while keeping its tally
func (c *Catalog) RetireCandidate(ctx context.Context, id string) (models.Candidate, error) {
	c.editMu.Lock()
	defer c.editMu.Unlock()

	res, err := c.db.ExecContext(ctx, `
		UPDATE candidate SET retired = $1, updated_at = $2 WHERE id = $3
	`, true, c.now(), id)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to retire candidate: %w", err)
	}
	if err := expectRow(res); err != nil {
		return models.Candidate{}, err
	}

	slog.Info("candidate retired", "candidate_id", id)
	return c.GetCandidate(ctx, id)
}

func (c *Catalog) resolveElection(ctx context.Context, electionType, constituency string) (models.Election, error) {
	if electionType == models.ElectionParliamentary && models.NormalizeConstituency(constituency) == "" {
		return models.Election{}, fmt.Errorf("%w: constituency is required for parliamentary candidates", ErrInvalidInput)
	}
	return c.ElectionByScope(ctx, models.ScopeFor(electionType, constituency))
}

func (c *Catalog) ensureNoBallots(ctx context.Context, candidateID string) error {
	if c.ballots == nil {
		return nil
	}
	n, err := c.ballots.CountForCandidate(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to count ballots: %w", err)
	}
	if n > 0 {
		return ErrCandidateHasBallots
	}
	return nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var cand models.Candidate
	err := row.Scan(
		&cand.Seq, &cand.ID, &cand.ElectionID, &cand.Name, &cand.Party, &cand.Image,
		&cand.Retired, &cand.CreatedAt, &cand.Type, &cand.Constituency,
	)
	return cand, err
}
