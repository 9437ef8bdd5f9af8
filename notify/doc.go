// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify tells subscribers that a tally changed.

Events are published after the admission transaction commits, so a
subscriber never sees a tally that was rolled back. Publishing is best
effort: a failed publish is logged and the vote still stands.

# Redis

With REDIS_URL set, events are published as JSON on one channel per election:

	quickly-vote:tally:<election_id>

	{"election_id":"spring-2026","candidate_id":"alice","tally":42,"at":"..."}

Without it, Log writes the events to the server log.
*/
package notify
