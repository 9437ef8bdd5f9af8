// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

// Result is the outcome of an admission. It is one of Accepted, AlreadyVoted,
// CandidateNotFound, ElectionClosed or TransientFailure.
type Result interface {
	// Code is the wire error code; "accepted" for Accepted.
	Code() string
	result()
}

// CodeAccepted is the code of an Accepted result.
const CodeAccepted = "accepted"

// Accepted means the vote was recorded and counted.
type Accepted struct {
	VoteID        string
	ElectionID    string
	CandidateID   string
	CandidateName string
	Tally         int64
	CastAt        time.Time
}

// AlreadyVoted means the identity already holds a vote in the election.
// The fields describe that earlier vote, not the one just submitted.
type AlreadyVoted struct {
	ElectionID    string
	CandidateID   string
	CandidateName string
	CastAt        time.Time
}

// CandidateNotFound means no candidate has the requested id.
type CandidateNotFound struct {
	CandidateID string
}

// ElectionClosed means the submission fell outside the voting window.
type ElectionClosed struct {
	ElectionID string
	OpensAt    time.Time
	ClosesAt   time.Time
}

// TransientFailure means the store failed. Nothing was recorded; the caller may retry.
type TransientFailure struct {
	Err error
}

func (Accepted) Code() string          { return CodeAccepted }
func (AlreadyVoted) Code() string      { return models.CodeAlreadyVoted }
func (CandidateNotFound) Code() string { return models.CodeNotFound }
func (ElectionClosed) Code() string    { return models.CodeClosed }
func (TransientFailure) Code() string  { return models.CodeInternal }

func (Accepted) result()          {}
func (AlreadyVoted) result()      {}
func (CandidateNotFound) result() {}
func (ElectionClosed) result()    {}
func (TransientFailure) result()  {}

// NotYetOpen reports whether the election had not opened at t.
func (c ElectionClosed) NotYetOpen(t time.Time) bool {
	return t.Before(c.OpensAt)
}
