// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Tally API server.

Quickly Tally runs short-lived group elections. A poll lists up to nine
candidates and is counted either by instant runoff (single transferable vote
when more than one seat is open) or by STAR voting. Ballots stay sealed until
the poll closes; the result is then stored with a round-by-round transcript
that is played back to websocket subscribers.

# Starting the Server

Only the admin key salt is required; sqlite is used by default:

	ADMIN_KEY_SALT=secret go run .

Or with postgres and flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-salt secret

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (required for postgres)
  - WATCH_INTERVAL (-watch): Expired poll check (default: 1m)
  - ANNOUNCE_DELAY (-announce-delay): Transcript pacing (default: 500ms)
  - MAX_ROUNDS (-max-rounds): Ranked count safety stop (default: 100)
  - LOG_LEVEL, LOG_FORMAT: debug/info/warn/error, text/json

# Architecture

The server uses a handler-based architecture with dependency injection:

  - election: IRV/STV and STAR tabulation, transcripts, tie-breaking
  - poll: Open polls, ballot intake, closing and the expiry watcher
  - db: sqlite/postgres schema and the audit record of every ballot
  - live: Websocket hub for tallies and result announcements
  - handlers: HTTP request handlers (polls, voting, results, live)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Poll IDs, admin keys, voter IDs
  - cliparse: Configuration parsing

Open polls are rebuilt from the database at start-up, so a restart does not
lose ballots. See package documentation for each component.
*/
package main
