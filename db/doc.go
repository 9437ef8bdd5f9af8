// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connections

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite, pure Go):

	conn, err := db.Open(ctx, db.Postgres, "postgres://...", 30*time.Second)
	conn, err := db.Open(ctx, db.SQLite, "votes.db", 0)

The first ping is retried with exponential backoff so the server can start
before its database is reachable. SQLite connections get foreign keys, a busy
timeout, WAL mode, and immediate transactions, and are limited to one open
connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: id, name, voting window
  - candidate: display name and cached tally
  - vote_record: one row per identity per election

# Relationships

	election 1──* candidate
	election 1──* vote_record
	candidate 1──* vote_record

Foreign keys use ON DELETE RESTRICT: a candidate cannot disappear while
votes reference it.

# Constraints

  - vote_record (election_id, identity_token) is UNIQUE. This constraint is
    what admits exactly one vote per identity.
  - candidate.tally >= 0
  - election.closes_at > election.opens_at

Timestamps are stored as unix milliseconds.
*/
package db
