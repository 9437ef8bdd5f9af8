// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote runs a single-choice election: each identity casts at most one
vote, only inside the voting window, and every accepted vote increments the
chosen candidate's tally exactly once.

# Starting the Server

The server reads a .env file, environment variables or CLI flags:

	DATABASE_URL=votes.db ELECTION_FILE=election.yaml ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -election election.yaml

The admin key for an election is never logged. Derive it with votectl:

	ADMIN_KEY_SALT=... votectl admin-key <election-id>

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ELECTION_FILE (-election): YAML election definition, seeded on every start
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - SESSION_SECRET (-session-secret): HS256 secret for account sessions
  - REDIS_URL (-redis): Publish tally changes to Redis
  - AUDIT_INTERVAL (-audit-interval): Tally audit period (default: 1m, 0 disables)
  - CORS_ORIGINS (-cors-origins): Comma-separated allowed origins (default: *, without credentials)

# Architecture

  - admission: The vote admission service and its outcomes
  - store: SQL storage for elections, candidates and vote records
  - identity: Identity tokens from accounts or device fingerprints
  - election: YAML election definitions and seeding
  - audit: Periodic tally drift checks
  - notify: Tally change events (log or Redis)
  - handlers, router, middleware: The HTTP API
  - auth: Admin keys, IP hashing and session verification
  - client, cmd/votectl: Go client with retries and a CLI
  - db: Connections and schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
