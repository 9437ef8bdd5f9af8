// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity derives the voter identity token used to enforce one vote
per voter.

# Sources

A token comes from one of two places:

  - account: the authenticated account id, verified upstream by the auth layer
  - device: a SHA-256 fingerprint of client environment signals

# Fingerprints

Fingerprint joins a fixed, ordered list of signals with "|" and hashes it:

	WxH | color depth | pixel depth | timezone | locale | locales | platform |
	concurrency | device memory [| graphics renderer | graphics vendor]

The graphics components are only present when the client could read them.
The format matches the browser implementation, so a token computed in the
browser equals one computed here from the same signals.

# Limitations

Device fingerprints are a heuristic. Two devices with the same hardware and
software produce the same token, and one device with a different browser or
profile produces a different one. Nothing here is authentication.

# Resolver

Resolver computes the token once per session and caches it:

	r := identity.NewResolver(accountFromSession, identity.LocalSignals)
	token := r.Resolve()

Resolution never fails; missing signals are simply omitted or zero.
*/
package identity
