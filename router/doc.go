// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(s, svc, auditor, sessions, cfg)

# Endpoints

Health:

	GET /health

Identity and voting (public):

	POST /identity - Resolve an identity token from device signals or a session
	POST /vote     - Cast a vote (accepted, already_voted, not_found, closed, internal)

Election info (public):

	GET /elections/{id}         - Election, candidates and window
	GET /elections/{id}/results - Standings by tally
	GET /elections/{id}/my-vote - The caller's vote, by X-Identity-Token or session

Admin (requires X-Admin-Key):

	GET /elections/{id}/admin/votes - Vote records
	GET /elections/{id}/admin/audit - Tally drift report

A bearer session in the Authorization header replaces the posted identity token.
*/
package router
