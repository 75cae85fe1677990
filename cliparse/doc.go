// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p              Server port (default: 3000)
	-d              Database URL or SQLite file path
	-t              Database type: sqlite (default) or postgres
	-ledger         Ballot store: sql (default) or badger
	-badger-dir     Badger data directory (required for the badger ledger)
	-seed           YAML seed file
	-token-ttl      Bearer token lifetime (default: 12h)
	-token-secret   Token signing secret
	-admin-id       Bootstrap admin username
	-admin-password Bootstrap admin password

# Environment Variables

Flags fall back to environment variables:

	PORT                     → -p
	DATABASE_URL             → -d
	DATABASE_TYPE            → -t
	LEDGER_BACKEND           → -ledger
	BADGER_DIR               → -badger-dir
	SEED_FILE                → -seed
	TOKEN_TTL                → -token-ttl
	TOKEN_SECRET             → -token-secret
	BOOTSTRAP_ADMIN_ID       → -admin-id
	BOOTSTRAP_ADMIN_PASSWORD → -admin-password

CLI flags take precedence over environment variables. LoadEnvFile reads a
.env file into the environment first; variables already set are kept.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - TOKEN_SECRET is missing
  - the database type or ledger backend is unknown
  - a bootstrap admin is named without a password
*/
package cliparse
