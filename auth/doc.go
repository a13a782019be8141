// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides poll IDs, admin keys and voter ID checks.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(pollID, salt)
	err := auth.ValidateAdminKey(pollID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same poll ID and salt always produce the same key, so closing a poll
needs no stored secret and keys survive restarts.

# Voter IDs

Voters are identified by an opaque string supplied by the caller (the
X-Voter-ID header), typically a chat platform user ID:

	voterID, err := auth.NormalizeVoterID(r.Header.Get("X-Voter-ID"))

The ID is trimmed and must be non-empty, valid UTF-8, free of control
characters and at most MaxVoterIDLength bytes. Beyond that it is compared
byte for byte; one ballot is accepted per voter ID per poll.

# ID Generation

Random hex IDs for polls:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
