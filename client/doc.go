// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the quickly-vote API.

The client resolves its identity once through an identity.Resolver and
sends the same token with every request:

	resolver := identity.NewResolver(nil, identity.LocalSignals)
	c := client.New("http://localhost:3318", resolver)

	res, err := c.Vote(ctx, "alice")
	switch {
	case err != nil:
		// network failure, or the server kept failing
	case res.Accepted():
	default:
		// res.Response.Error is already_voted, not_found or closed
	}

Server errors (5xx) are retried with exponential backoff for up to
DefaultMaxRetryTime, honouring Retry-After. Retrying is safe: the server
admits at most one vote per identity, so a retry of a vote that did land
answers already_voted.

HintFile keeps a local record of votes made from this machine. It is a hint
only; the server's answer is authoritative.
*/
package client
