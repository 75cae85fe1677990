// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/models"
)

// SQLStore keeps ballots in the ballot table. UNIQUE (voter_id, scope) is
// the one-vote constraint.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

func (s *SQLStore) Insert(ctx context.Context, b models.Ballot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ballot (id, voter_id, scope, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.VoterID, b.Scope, b.CandidateID, b.CastAt)
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrAlreadyVoted
	case db.IsForeignKeyViolation(err):
		// Candidate deleted between validation and insert
		return ErrInvalidCandidate
	default:
		return unavailable("insert ballot", err)
	}
}

func (s *SQLStore) Has(ctx context.Context, voterID, scope string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ballot WHERE voter_id = $1 AND scope = $2
		)
	`, voterID, scope).Scan(&exists)
	if err != nil {
		return false, unavailable("query ballot", err)
	}
	return exists, nil
}

func (s *SQLStore) ScopesForVoter(ctx context.Context, voterID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope FROM ballot WHERE voter_id = $1 ORDER BY scope
	`, voterID)
	if err != nil {
		return nil, unavailable("query ballots", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, unavailable("scan ballot", err)
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query ballots", err)
	}
	return scopes, nil
}

// CountByCandidate runs as a single statement, so it sees one committed snapshot
func (s *SQLStore) CountByCandidate(ctx context.Context, f ScopeFilter) (map[string]int, error) {
	query := `SELECT candidate_id, COUNT(*) FROM ballot`
	var args []any
	switch {
	case f.Scope != "":
		query += ` WHERE scope = $1`
		args = append(args, f.Scope)
	case f.Prefix != "":
		query += ` WHERE scope LIKE $1 ESCAPE '\'`
		args = append(args, escapeLike(f.Prefix)+"%")
	}
	query += ` GROUP BY candidate_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("count ballots", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var candidateID string
		var n int
		if err := rows.Scan(&candidateID, &n); err != nil {
			return nil, unavailable("scan count", err)
		}
		counts[candidateID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("count ballots", err)
	}
	return counts, nil
}

func (s *SQLStore) CountForCandidate(ctx context.Context, candidateID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballot WHERE candidate_id = $1
	`, candidateID).Scan(&n)
	if err != nil {
		return 0, unavailable("count ballots", err)
	}
	return n, nil
}

// Close is a no-op; the connection pool belongs to the caller
func (s *SQLStore) Close() error {
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ Store = (*SQLStore)(nil)
