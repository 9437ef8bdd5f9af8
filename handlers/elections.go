// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// ElectionReader is the read side of the store used by the public endpoints.
type ElectionReader interface {
	Election(ctx context.Context, id string) (models.Election, error)
	Candidates(ctx context.Context, electionID string) ([]models.Candidate, error)
	Standings(ctx context.Context, electionID string) ([]models.Candidate, error)
	VoteByIdentity(ctx context.Context, electionID, identityToken string) (admission.ExistingVote, error)
}

type ElectionHandler struct {
	store    ElectionReader
	sessions *auth.SessionVerifier
	now      func() time.Time
}

func NewElectionHandler(store ElectionReader, sessions *auth.SessionVerifier) *ElectionHandler {
	return &ElectionHandler{store: store, sessions: sessions, now: time.Now}
}

// loadElection writes the error response itself and reports false on failure.
func (h *ElectionHandler) loadElection(w http.ResponseWriter, r *http.Request) (models.Election, bool) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return models.Election{}, false
	}

	e, err := h.store.Election(r.Context(), electionID)
	if errors.Is(err, admission.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return models.Election{}, false
	}
	if err != nil {
		slog.Error("failed to query election", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Election{}, false
	}
	return e, true
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	e, ok := h.loadElection(w, r)
	if !ok {
		return
	}

	candidates, err := h.store.Candidates(r.Context(), e.ID)
	if err != nil {
		slog.Error("failed to query candidates", "election_id", e.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.now()
	resp := models.ElectionInfoResponse{
		Election:   e,
		Candidates: candidates,
		Open:       e.IsOpen(now),
	}
	if resp.Open {
		resp.ClosesIn = humanize.RelTime(e.ClosesAt, now, "ago", "from now")
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetResults handles GET /elections/{id}/results
func (h *ElectionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	e, ok := h.loadElection(w, r)
	if !ok {
		return
	}

	standings, err := h.store.Standings(r.Context(), e.ID)
	if err != nil {
		slog.Error("failed to query standings", "election_id", e.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var total int64
	for _, c := range standings {
		total += c.Tally
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		ElectionID: e.ID,
		Open:       e.IsOpen(h.now()),
		TotalVotes: total,
		Candidates: standings,
	})
}

// GetMyVote handles GET /elections/{id}/my-vote
func (h *ElectionHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	token, source, err := requestIdentity(r, h.sessions, r.Header.Get(IdentityTokenHeader))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session")
		return
	}
	if token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, IdentityTokenHeader+" header required")
		return
	}

	e, ok := h.loadElection(w, r)
	if !ok {
		return
	}

	existing, err := h.store.VoteByIdentity(r.Context(), e.ID, identity.Key(source, token))
	if errors.Is(err, admission.ErrNotFound) {
		middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{HasVoted: false})
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "election_id", e.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	castAt := existing.Record.CastAt
	middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{
		HasVoted:      true,
		CandidateID:   existing.Record.CandidateID,
		CandidateName: existing.CandidateName,
		CastAt:        &castAt,
	})
}
