// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the SQL store behind vote admission, results and auditing.

Queries are written once with ? placeholders and rebound to $N on Postgres,
so the same store runs on lib/pq and on modernc.org/sqlite.

# Admission

Store implements admission.Store. InsertVote relies on

	INSERT ... ON CONFLICT (election_id, identity_token) DO NOTHING

and reports whether a row was written. A unique violation raised by the
driver (SQLSTATE 23505 on Postgres, SQLITE_CONSTRAINT_UNIQUE or
SQLITE_CONSTRAINT_PRIMARYKEY on SQLite) is returned as admission.ErrConflict.
IncrementTally uses UPDATE ... RETURNING inside the same transaction.

# Elections

UpsertElection and UpsertCandidate are idempotent and never reset a tally.
A candidate id already used by another election is rejected with
ErrCandidateElectionMismatch.

# Reads

  - Candidates: by display name
  - Standings: by tally, highest first
  - ListVotes: every vote with its identity, newest first (admin only)
  - TallyDrift: candidates whose tally differs from count(vote_record)
*/
package store
