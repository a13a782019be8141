// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnv reads an optional .env file, then ParseFlags returns a Config:

	if err := cliparse.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: Connection string or sqlite file (default: quickly-tally.db for sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - WatchInterval: How often expired polls are closed (default: 1m)
  - AnnounceDelay: Pause between announced transcript entries (default: 500ms)
  - MaxRounds: Safety stop for ranked tabulation (default: 100)
  - LogLevel, LogFormat: debug/info/warn/error and text/json

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-admin-salt      Admin key salt
	-watch           Watch interval
	-announce-delay  Announce delay
	-max-rounds      Max rounds
	-log-level       Log level
	-log-format      Log format

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_KEY_SALT → -admin-salt
	WATCH_INTERVAL → -watch
	ANNOUNCE_DELAY → -announce-delay
	MAX_ROUNDS     → -max-rounds
	LOG_LEVEL      → -log-level
	LOG_FORMAT     → -log-format

CLI flags take precedence over environment variables, and variables already
in the environment take precedence over the .env file.

# Validation

ParseFlags returns an error if:

  - ADMIN_KEY_SALT is missing
  - DATABASE_URL is missing for postgres
  - the database type is not sqlite or postgres
  - a duration or number does not parse, or is out of range
*/
package cliparse
