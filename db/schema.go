// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are unix milliseconds so the same schema works on both drivers.
const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    opens_at BIGINT NOT NULL,
    closes_at BIGINT NOT NULL,
    CHECK (closes_at > opens_at)
);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE RESTRICT,
    display_name TEXT NOT NULL,
    tally BIGINT NOT NULL DEFAULT 0 CHECK (tally >= 0),
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Vote records: one per identity per election
CREATE TABLE IF NOT EXISTS vote_record (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE RESTRICT,
    identity_token TEXT NOT NULL,
    identity_source TEXT NOT NULL DEFAULT 'device' CHECK (identity_source IN ('account', 'device')),
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE RESTRICT,
    cast_at BIGINT NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (election_id, identity_token)
);

CREATE INDEX IF NOT EXISTS idx_vote_record_candidate_id ON vote_record(candidate_id);
CREATE INDEX IF NOT EXISTS idx_vote_record_election_id ON vote_record(election_id);
`
