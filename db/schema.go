// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported SQL dialects
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Open connects to a SQL database and verifies the connection.
func Open(dialect, url string) (*sql.DB, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", dialect)
	}

	conn, err := sql.Open(dialect, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	// In-memory sqlite databases are per connection
	if dialect == DialectSQLite && strings.Contains(url, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	extraType := "TEXT"
	if dialect == DialectPostgres {
		extraType = "JSONB"
	}

	_, err := db.Exec(fmt.Sprintf(schema, extraType))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Rebind rewrites ? placeholders into the $n form postgres expects.
func Rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

const schema = `
-- Raw clips awaiting processing
CREATE TABLE IF NOT EXISTS unprocessed (
    id TEXT PRIMARY KEY,
    video_url TEXT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    processed BOOLEAN NOT NULL DEFAULT FALSE,
    processed_id TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_unprocessed_processed ON unprocessed(processed);
CREATE INDEX IF NOT EXISTS idx_unprocessed_created_at ON unprocessed(created_at);

-- Processed clips linked back to their source
CREATE TABLE IF NOT EXISTS processed (
    id TEXT PRIMARY KEY,
    unprocessed_id TEXT NOT NULL REFERENCES unprocessed(id),
    original_video_url TEXT NOT NULL,
    processed_video_url TEXT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMP NOT NULL,
    extra_data %s
);

CREATE INDEX IF NOT EXISTS idx_processed_unprocessed_id ON processed(unprocessed_id);
CREATE INDEX IF NOT EXISTS idx_processed_created_at ON processed(created_at);
`
