// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database, creates the schema, and keeps the audit
record of every poll.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, the default) or "postgres"
(github.com/lib/pq) and pings before returning:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The SQL is limited to what both sqlite and postgres accept.

# Tables

  - poll: poll metadata and lifecycle state (open, closed)
  - candidate: labels in ballot row order
  - ballot: one row per voter per poll, with its column position
  - ballot_entry: the rank or star score given to each candidate
  - result_snapshot: the stored election.Result as JSON plus an inputs hash

# Relationships

	poll 1──* candidate
	poll 1──* ballot
	ballot 1──* ballot_entry
	poll 1──* result_snapshot

# Store

Store writes a ballot after every accepted submission, so an open poll can be
rebuilt exactly, column order included, after a restart:

	n, err := store.Restore(ctx, registry)

SaveResult satisfies poll.ResultStore and closes the poll in the same
transaction that writes the snapshot.
*/
package db
