// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live streams poll activity to websocket subscribers.

A Hub keeps subscribers grouped by poll ID. Two kinds of traffic flow through it:

  - Broadcast sends the current tally after every accepted ballot and on each
    watcher sweep.
  - Announce plays a closed poll's result transcript one entry per message,
    spaced by a configurable delay (500ms by default), followed by a closed
    message.

Every frame is a JSON Message:

	{"type": "tally", "poll_id": "...", "payload": {...}}
	{"type": "transcript", "poll_id": "...", "payload": {"index": 0, "total": 5, "text": "..."}}
	{"type": "closed", "poll_id": "..."}

Subscribers only listen. Each websocket Client runs a read pump that watches
for pongs and disconnects and a write pump that sends queued frames and
periodic pings. A slow client has its messages dropped rather than blocking
the hub.

The Hub satisfies poll.Broadcaster and poll.Announcer.
*/
package live
