// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles SQL connections and schema creation for the postgres
and sqlite record stores.

# Connecting

	conn, err := db.Open(db.DialectPostgres, "postgres://...")
	conn, err := db.Open(db.DialectSQLite, "file:track360.db")

Drivers are github.com/lib/pq and modernc.org/sqlite.

# Schema Creation

CreateSchema initializes both tables:

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - unprocessed: raw clip URL, location, processed flag, processed_id
  - processed: processed clip URL, copied original URL and location,
    extra_data (JSONB on postgres, TEXT on sqlite)

# Relationships

	unprocessed 1──0..1 processed (processed.unprocessed_id)

# Placeholders

Queries are written with ? placeholders. Rebind converts them to $n for
postgres:

	conn.Exec(db.Rebind(dialect, "UPDATE unprocessed SET processed = ? WHERE id = ?"), true, id)
*/
package db
