// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - ElectionFile: YAML election definition (required)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - SessionSecret: HS256 secret for account sessions (optional)
  - RedisURL: tally notification channel (optional)
  - AuditInterval: how often tallies are checked (default: 1m)
  - AllowedOrigins: CORS origins (default: "*", which never allows credentials)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-election         Election file
	-redis            Redis URL
	-audit-interval   Tally audit interval
	-cors-origins     Comma-separated CORS origins
	--admin-salt      Admin key salt
	--session-secret  Session secret

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ELECTION_FILE  → -election
	REDIS_URL      → -redis
	AUDIT_INTERVAL → -audit-interval
	CORS_ORIGINS   → -cors-origins
	ADMIN_KEY_SALT → --admin-salt
	SESSION_SECRET → --session-secret

CLI flags take precedence over environment variables. LoadDotEnv reads a
.env file into the environment first; variables already set are kept.

# Example

	// In main.go
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
