// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

Each handler is a struct over the narrow interfaces it needs:

  - IdentityHandler: Derives identity tokens from device signals or a session
  - VoteHandler: Submits votes through the admission service
  - ElectionHandler: Election info, results and the caller's own vote
  - AdminHandler: Vote records and tally audits

Handlers are created via constructor functions:

	voteHandler := handlers.NewVoteHandler(svc, sessions, cfg)

# Identity

A valid bearer session in the Authorization header always wins; its account
id becomes the identity token. Without one, POST /vote uses the posted
identity_token and read endpoints use the X-Identity-Token header. A bad
session is rejected with 401 rather than ignored.

# Vote Outcomes

SubmitVote maps each admission result to a status code:

	accepted      → 200
	already_voted → 409 (names the existing choice)
	not_found     → 404
	closed        → 409
	internal      → 500 with Retry-After

Legacy clients may send participant_id and device_fingerprint in place of
candidate_id and identity_token.

# Admin

Admin endpoints require the X-Admin-Key header, an HMAC of the election id.
*/
package handlers
