// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/notify"
)

// DefaultTimeout bounds one admission, independent of the caller's deadline.
const DefaultTimeout = 10 * time.Second

// Request is one vote submission. Identity is the raw token; votes are stored
// under identity.Key so account and device tokens never collide.
type Request struct {
	Identity    identity.Token
	Source      identity.Source
	CandidateID string
	IPHash      string
	UserAgent   string
}

// Service admits votes: at most one per identity per election.
type Service struct {
	store    Store
	notifier notify.Notifier
	now      func() time.Time
	timeout  time.Duration
	newID    func() string
}

type Option func(*Service)

// WithClock sets the clock used for the voting window and cast times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier sets where tally changes are published.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithTimeout bounds each admission. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notify.Log{},
		now:      time.Now,
		timeout:  DefaultTimeout,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit records req's vote if the identity has not voted in the candidate's
// election and the election is open. The returned error is ErrInvalidRequest
// or nil; every other outcome is a Result.
//
// The work runs detached from ctx's cancellation and is bounded by the
// service timeout. A retry after an abandoned call sees AlreadyVoted.
func (s *Service) Admit(ctx context.Context, req Request) (Result, error) {
	token := strings.TrimSpace(string(req.Identity))
	candidateID := strings.TrimSpace(req.CandidateID)
	if token == "" || candidateID == "" {
		return nil, ErrInvalidRequest
	}

	source := req.Source
	if source == "" {
		source = identity.SourceDevice
	}
	if !source.Valid() {
		return nil, ErrInvalidRequest
	}
	key := identity.Key(source, identity.Token(token))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	var (
		res        Result
		electionID string
	)
	err := s.store.RunInTx(ctx, func(tx Tx) error {
		res = nil

		candidate, election, err := tx.CandidateForVote(ctx, candidateID)
		if errors.Is(err, ErrNotFound) {
			prior, err := priorVote(tx.LatestVoteByIdentity(ctx, key))
			if err != nil {
				return err
			}
			res = prior
			if res == nil {
				res = CandidateNotFound{CandidateID: candidateID}
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load candidate: %w", err)
		}
		electionID = election.ID

		now := s.now()
		if !election.IsOpen(now) {
			prior, err := priorVote(tx.VoteByIdentity(ctx, election.ID, key))
			if err != nil {
				return err
			}
			res = prior
			if res == nil {
				res = ElectionClosed{ElectionID: election.ID, OpensAt: election.OpensAt, ClosesAt: election.ClosesAt}
			}
			return nil
		}

		rec := models.VoteRecord{
			ID:             s.newID(),
			ElectionID:     election.ID,
			IdentityToken:  key,
			IdentitySource: string(source),
			CandidateID:    candidate.ID,
			CastAt:         now,
			IPHash:         req.IPHash,
			UserAgent:      req.UserAgent,
		}

		inserted, err := tx.InsertVote(ctx, rec)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := tx.VoteByIdentity(ctx, election.ID, key)
			if err != nil {
				return fmt.Errorf("failed to read existing vote: %w", err)
			}
			res = alreadyVoted(existing)
			return nil
		}

		tally, err := tx.IncrementTally(ctx, candidate.ID)
		if err != nil {
			return fmt.Errorf("failed to increment tally: %w", err)
		}

		res = Accepted{
			VoteID:        rec.ID,
			ElectionID:    election.ID,
			CandidateID:   candidate.ID,
			CandidateName: candidate.DisplayName,
			Tally:         tally,
			CastAt:        now,
		}
		return nil
	})

	if errors.Is(err, ErrConflict) {
		existing, readErr := s.store.VoteByIdentity(ctx, electionID, key)
		if readErr != nil {
			return s.transient(fmt.Errorf("failed to read existing vote after conflict: %w", readErr), candidateID), nil
		}
		res, err = alreadyVoted(existing), nil
	}
	if err != nil {
		return s.transient(err, candidateID), nil
	}

	switch r := res.(type) {
	case Accepted:
		slog.Info("vote accepted", "election_id", r.ElectionID, "candidate_id", r.CandidateID, "source", source, "tally", r.Tally)
		s.publish(ctx, r)
	case AlreadyVoted:
		slog.Info("duplicate vote rejected", "election_id", r.ElectionID, "existing_candidate_id", r.CandidateID, "requested_candidate_id", candidateID)
	case ElectionClosed:
		slog.Info("vote outside voting window", "election_id", r.ElectionID, "candidate_id", candidateID)
	}

	return res, nil
}

func (s *Service) transient(err error, candidateID string) Result {
	slog.Error("vote admission failed", "candidate_id", candidateID, "error", err)
	return TransientFailure{Err: fmt.Errorf("admit vote: %w", err)}
}

func (s *Service) publish(ctx context.Context, r Accepted) {
	err := s.notifier.Publish(ctx, notify.Event{
		ElectionID:  r.ElectionID,
		CandidateID: r.CandidateID,
		Tally:       r.Tally,
		At:          r.CastAt,
	})
	if err != nil {
		slog.Warn("failed to publish tally change", "election_id", r.ElectionID, "candidate_id", r.CandidateID, "error", err)
	}
}

// priorVote turns an existing-vote lookup into AlreadyVoted, or nil when the
// identity has not voted.
func priorVote(v ExistingVote, err error) (Result, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing vote: %w", err)
	}
	return alreadyVoted(v), nil
}

func alreadyVoted(v ExistingVote) AlreadyVoted {
	return AlreadyVoted{
		ElectionID:    v.Record.ElectionID,
		CandidateID:   v.Record.CandidateID,
		CandidateName: v.CandidateName,
		CastAt:        v.Record.CastAt,
	}
}
