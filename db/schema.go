// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured store and verifies the connection.
// dbType is "sqlite" (url is a file path or DSN) or "postgres".
func Open(dbType, url string) (*sql.DB, error) {
	driver := "postgres"
	dsn := url
	if dbType == "sqlite" {
		driver = "sqlite"
		dsn = sqliteDSN(url)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if dbType == "sqlite" {
		// One writer at a time; transactions queue instead of failing with SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	return conn, nil
}

func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(url, "file:") {
		url = "file:" + url
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Reset drops every table and recreates an empty schema.
// When the store is a plain SQLite file the file itself is not removed;
// the tables are dropped in place so open connections stay valid.
func Reset(db *sql.DB) error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS reservation;
		DROP TABLE IF EXISTS stand;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}

	return CreateSchema(db)
}

// RemoveSQLiteFile deletes an SQLite database file if it exists.
// Used by the admin CLI before recreating a store from scratch.
func RemoveSQLiteFile(path string) error {
	path = strings.TrimPrefix(path, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

const schema = `
-- Service points (stands, toilets, ecopoints)
CREATE TABLE IF NOT EXISTS stand (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL CHECK (kind IN ('stand', 'toilet', 'ecopoint')),
    max_capacity INTEGER NOT NULL CHECK (max_capacity > 0),
    queue_counter INTEGER NOT NULL DEFAULT 0 CHECK (queue_counter >= 0),
    arrivals INTEGER NOT NULL DEFAULT 0,
    served INTEGER NOT NULL DEFAULT 0,
    service_seconds REAL NOT NULL CHECK (service_seconds > 0),
    servers INTEGER NOT NULL DEFAULT 1 CHECK (servers >= 1),
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    last_served_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stand_kind ON stand(kind);

-- Tickets in a stand's line: named bookings and anonymous walk-ins
CREATE TABLE IF NOT EXISTS reservation (
    reservation_id TEXT PRIMARY KEY,
    stand_id TEXT NOT NULL REFERENCES stand(id) ON DELETE CASCADE,
    ticket INTEGER NOT NULL,
    reservation_datetime TIMESTAMP NOT NULL,
    reservation_name TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'booking' CHECK (source IN ('booking', 'walk_in')),
    status TEXT NOT NULL DEFAULT 'waiting' CHECK (status IN ('waiting', 'served', 'cancelled')),
    code TEXT UNIQUE,
    token TEXT,
    ip_hash TEXT,
    closed_at TIMESTAMP,
    UNIQUE (stand_id, ticket)
);

CREATE INDEX IF NOT EXISTS idx_reservation_line ON reservation(stand_id, status, ticket);
`
