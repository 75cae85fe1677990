// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens connections, creates the schema, and classifies
constraint violations.

# Connections

	conn, err := db.Open(db.DialectSQLite, "chain-choice.db")
	conn, err := db.Open(db.DialectPostgres, "postgres://...")

SQLite files are opened in WAL mode with synchronous=FULL, foreign keys on,
and a busy timeout so that concurrent writers wait instead of failing.

# Schema Creation

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		return err
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The ballot table carries UNIQUE (voter_id, scope), the one-vote constraint.

# Errors

IsUniqueViolation and IsForeignKeyViolation recognise both drivers' errors.
*/
package db
