// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election loads the election file and seeds it into the store.

	id: spring-2026
	name: Spring Council
	opens_at: 2026-03-01T09:00:00Z
	closes_at: 2026-03-08T17:00:00Z
	candidates:
	  - id: alice
	    name: Alice Liddell
	  - name: Bob Builder   # id derived from election id and name

Voting is open in [opens_at, closes_at). Seeding is idempotent: tallies are
never reset and candidates are never deleted.
*/
package election
