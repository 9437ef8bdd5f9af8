// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"errors"

	"github.com/danielhkuo/quickly-vote/models"
)

var (
	// ErrInvalidRequest is returned by Admit for a blank identity or candidate id.
	ErrInvalidRequest = errors.New("invalid vote request")

	// ErrNotFound is returned by a Store when a candidate or vote does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by a Store when the identity already holds a vote
	// in the election and the insert hit the unique constraint.
	ErrConflict = errors.New("identity already voted")
)

// ExistingVote is a stored vote together with the name of the chosen candidate.
type ExistingVote struct {
	Record        models.VoteRecord
	CandidateName string
}

// Store is the persistence the service admits votes against.
type Store interface {
	// RunInTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(Tx) error) error

	// VoteByIdentity reads the vote an identity holds in an election.
	// Returns ErrNotFound when there is none.
	VoteByIdentity(ctx context.Context, electionID, identityToken string) (ExistingVote, error)
}

// Tx is the set of operations available inside one admission transaction.
type Tx interface {
	// CandidateForVote loads a candidate and its election.
	// Returns ErrNotFound for an unknown candidate.
	CandidateForVote(ctx context.Context, candidateID string) (models.Candidate, models.Election, error)

	// InsertVote inserts rec unless the identity already voted in the election.
	// Reports false when a vote already existed. May return ErrConflict.
	InsertVote(ctx context.Context, rec models.VoteRecord) (bool, error)

	// VoteByIdentity reads the vote an identity holds in an election.
	VoteByIdentity(ctx context.Context, electionID, identityToken string) (ExistingVote, error)

	// LatestVoteByIdentity reads the identity's most recent vote in any
	// election. Returns ErrNotFound when there is none.
	LatestVoteByIdentity(ctx context.Context, identityToken string) (ExistingVote, error)

	// IncrementTally adds one to a candidate's tally and returns the new value.
	IncrementTally(ctx context.Context, candidateID string) (int64, error)
}
