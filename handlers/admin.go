// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// AdminReader is the store access the admin endpoints need.
type AdminReader interface {
	Election(ctx context.Context, id string) (models.Election, error)
	ListVotes(ctx context.Context, electionID string) ([]models.VoteDetail, error)
}

// TallyChecker audits an election's tallies.
type TallyChecker interface {
	Check(ctx context.Context, electionID string) (models.AuditResponse, error)
}

type AdminHandler struct {
	store   AdminReader
	auditor TallyChecker
	cfg     cliparse.Config
}

func NewAdminHandler(store AdminReader, auditor TallyChecker, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: store, auditor: auditor, cfg: cfg}
}

// authorize checks the admin key and that the election exists. It writes the
// error response itself and reports false on failure.
func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return "", false
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(electionID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return "", false
	}

	_, err := h.store.Election(r.Context(), electionID)
	if errors.Is(err, admission.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query election", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	return electionID, true
}

// ListVotes handles GET /elections/{id}/admin/votes
func (h *AdminHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	votes, err := h.store.ListVotes(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to list votes", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("vote details viewed", "election_id", electionID, "votes", len(votes))
	middleware.JSONResponse(w, http.StatusOK, models.VoteDetailsResponse{Votes: votes})
}

// Audit handles GET /elections/{id}/admin/audit
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	report, err := h.auditor.Check(r.Context(), electionID)
	if err != nil {
		slog.Error("tally audit failed", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Audit failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, report)
}
