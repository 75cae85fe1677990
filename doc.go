// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Chain Choice voting API server.

Chain Choice runs national elections with one presidential election and one
parliamentary election per constituency. Every verified voter casts at most
one ballot per election, and results are recomputed from the ballot ledger
on each query.

# Starting the Server

	DATABASE_URL=chain-choice.db TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 3000 -t postgres -d "postgres://..." -token-secret ...

A .env file in the working directory is loaded first; variables already set
in the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - TOKEN_SECRET (-token-secret): HS256 secret for JWT bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LEDGER_BACKEND (-ledger): sql or badger ballot store (default: sql)
  - BADGER_DIR (-badger-dir): badger data directory, required with LEDGER_BACKEND=badger
  - TOKEN_TTL (-token-ttl): bearer token lifetime (default: 12h)
  - BOOTSTRAP_ADMIN_ID / BOOTSTRAP_ADMIN_PASSWORD: admin created at startup
  - SEED_FILE (-seed): YAML file with elections, candidates and voters

# Architecture

  - ledger: ballot ledger, vote status, SQL and badger ballot stores
  - tally: results computed from the ledger
  - catalog: elections and candidates
  - registry: voters and administrators
  - seed: YAML seed loader
  - handlers, router, middleware: HTTP API
  - auth: passwords, bearer tokens, verification codes
  - db: connections, schema, constraint classification
  - cliparse: configuration parsing
*/
package main
