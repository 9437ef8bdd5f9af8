// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin keys, session verification, and IP hashing.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same election ID and salt always produce the same key. This allows
validation without storing the key in the database.

# Sessions

Sign-in happens elsewhere; this package only verifies the resulting HS256
JWT. The subject claim is the account id:

	v := auth.NewSessionVerifier(secret)
	accountID, err := v.FromRequest(r) // Authorization: Bearer <jwt>

A nil verifier (empty secret) disables sessions and always returns
ErrNoSession. Tokens must carry an expiry.

# IP Hashing

For privacy-preserving abuse review:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
