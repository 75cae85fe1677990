// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types. They double as database/sql driver names.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// sqlitePragmas are applied to every SQLite connection. WAL lets readers run
// alongside the writer, busy_timeout queues concurrent writers, synchronous
// FULL syncs every commit, and SQLite leaves foreign keys off unless asked.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=foreign_keys(1)"

// Open connects to the configured database and verifies the connection
func Open(dialect, url string) (*sql.DB, error) {
	var dsn string
	switch dialect {
	case DialectSQLite:
		dsn = sqliteDSN(url)
	case DialectPostgres:
		dsn = url
	default:
		return nil, fmt.Errorf("unsupported database type %q", dialect)
	}

	conn, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return conn, nil
}

func sqliteDSN(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	if !strings.HasPrefix(url, "file:") {
		url = "file:" + url
	}
	if strings.Contains(url, "?") {
		return url + "&" + sqlitePragmas
	}
	return url + "?" + sqlitePragmas
}
