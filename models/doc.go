// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - VoteRequest: candidate_id, identity_token (legacy participant_id, device_fingerprint)
  - ResolveIdentityRequest: raw device signals for server-side fingerprinting

# Response Types

Types for JSON responses:

  - VoteResponse: success flag, error code, chosen candidate
  - ResolveIdentityResponse: identity_token, source
  - ElectionInfoResponse: election, candidates, open flag, closes_in
  - ResultsResponse: candidates ordered by tally
  - MyVoteResponse: the caller's existing vote, if any
  - VoteDetailsResponse: admin view of all vote records
  - AuditResponse: tally drift report
  - ErrorResponse: error, message

# Domain Types

  - Election: voting window (opens_at inclusive, closes_at exclusive)
  - Candidate: display name and cached tally
  - VoteRecord: one accepted vote per identity per election
  - VoteDetail, TallyDrift: admin read models

# Constants

Vote error codes:

	CodeAlreadyVoted = "already_voted"
	CodeNotFound     = "not_found"
	CodeClosed       = "closed"
	CodeInternal     = "internal"
*/
package models
