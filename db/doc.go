// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the store and manages its schema.

# Drivers

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres"
(lib/pq). SQLite connections are limited to one so transactions queue
instead of failing with SQLITE_BUSY:

	conn, err := db.Open("sqlite", "event.db")

# Schema Creation

CreateSchema initializes all required tables. Safe to call multiple
times - uses IF NOT EXISTS for all tables and indexes. Reset drops
everything and recreates it.

# Tables

  - stand: Service points with their queue counter and decay clock
  - reservation: Tickets in a line, named bookings and walk-ins

# Relationships

	stand 1──* reservation

Reservations cascade with their stand.

# Indexes

  - stand.name (unique)
  - stand.kind
  - reservation.(stand_id, ticket) (unique)
  - reservation.(stand_id, status, ticket)
  - reservation.code (unique)
*/
package db
