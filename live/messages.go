// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

// Message types sent to subscribers
const (
	MsgTally      = "tally"
	MsgTranscript = "transcript"
	MsgClosed     = "closed"
)

// Message is the envelope for everything written to a subscriber
type Message struct {
	Type    string `json:"type"`
	PollID  string `json:"poll_id"`
	Payload any    `json:"payload,omitempty"`
}

// TranscriptEntry is one announced block of a result transcript
type TranscriptEntry struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}
