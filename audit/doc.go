// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package audit checks that every candidate's cached tally equals the number
// of vote records naming it. Drift is logged at error level with
// "alert"="page" and left for an operator; tallies are never rewritten.
package audit
