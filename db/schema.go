// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	ddl, err := schemaFor(dialect)
	if err != nil {
		return err
	}

	// Postgres accepts the whole script in one Exec; SQLite drivers stop at
	// the first statement, so run them one at a time everywhere.
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

func schemaFor(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return strings.ReplaceAll(schema, "{{SEQ}}", "seq INTEGER PRIMARY KEY AUTOINCREMENT"), nil
	case DialectPostgres:
		return strings.ReplaceAll(schema, "{{SEQ}}", "seq BIGSERIAL PRIMARY KEY"), nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dialect)
	}
}

const schema = `
-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    phone TEXT NOT NULL DEFAULT '',
    constituency TEXT,
    password_hash TEXT NOT NULL,
    verification_hash TEXT,
    verification_attempts INTEGER NOT NULL DEFAULT 0,
    verified BOOLEAN NOT NULL DEFAULT FALSE,
    verified_at TIMESTAMP,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Administrators
CREATE TABLE IF NOT EXISTS admin (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Elections (scope is unique: one presidential, one per constituency)
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL CHECK (type IN ('presidential', 'parliamentary')),
    constituency TEXT NOT NULL DEFAULT '',
    scope TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((type = 'presidential' AND constituency = '') OR (type = 'parliamentary' AND constituency <> ''))
);

-- Candidates (seq records registration order)
CREATE TABLE IF NOT EXISTS candidate (
    {{SEQ}},
    id TEXT NOT NULL UNIQUE,
    election_id TEXT NOT NULL REFERENCES election(id),
    name TEXT NOT NULL,
    party TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    retired BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Ballots: append-only, one per voter per scope
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voter(id),
    scope TEXT NOT NULL,
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (voter_id, scope)
);

CREATE INDEX IF NOT EXISTS idx_ballot_scope ON ballot(scope);
CREATE INDEX IF NOT EXISTS idx_ballot_candidate_id ON ballot(candidate_id)
`
