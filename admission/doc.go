// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a vote is recorded.

An identity may hold at most one vote per election. Service.Admit enforces
this against a Store and always answers with one of a closed set of results:

	res, err := svc.Admit(ctx, admission.Request{
		Identity:    token,
		Source:      identity.SourceDevice,
		CandidateID: "alice",
	})
	if err != nil {
		// ErrInvalidRequest: blank identity or candidate id
	}
	switch r := res.(type) {
	case admission.Accepted:          // recorded, r.Tally is the new count
	case admission.AlreadyVoted:      // r.CandidateID is the earlier choice
	case admission.CandidateNotFound:
	case admission.ElectionClosed:    // outside [opens_at, closes_at)
	case admission.TransientFailure:  // nothing recorded, safe to retry
	}

# Transaction

One transaction loads the candidate with its election, checks the voting
window, inserts the vote record and increments the candidate's tally. The
store's UNIQUE (election_id, identity_token) constraint decides which of
several concurrent submissions wins; no in-process lock is involved. A
losing submission reads the winner's record and reports AlreadyVoted.

The transaction runs detached from the caller's cancellation, bounded by the
service timeout (DefaultTimeout unless WithTimeout is given). A caller that
gives up never leaves half a vote behind, and its retry sees AlreadyVoted.

# Notifications

After commit, Accepted votes are published to the configured notify.Notifier.
Publish failures are logged and do not affect the result.
*/
package admission
