// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// retryAfterSeconds is sent with internal errors.
const retryAfterSeconds = "1"

// Admitter admits votes.
type Admitter interface {
	Admit(ctx context.Context, req admission.Request) (admission.Result, error)
}

type VoteHandler struct {
	svc      Admitter
	sessions *auth.SessionVerifier
	cfg      cliparse.Config
	now      func() time.Time
}

func NewVoteHandler(svc Admitter, sessions *auth.SessionVerifier, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{svc: svc, sessions: sessions, cfg: cfg, now: time.Now}
}

// SubmitVote handles POST /vote
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		voteResponse(w, http.StatusBadRequest, models.VoteResponse{
			Error:   models.CodeInvalidRequest,
			Message: "Invalid JSON",
		})
		return
	}

	// Legacy clients send participant_id and device_fingerprint.
	candidateID := firstNonEmpty(req.CandidateID, req.ParticipantID)
	posted := firstNonEmpty(req.IdentityToken, req.DeviceFingerprint)

	token, source, err := requestIdentity(r, h.sessions, posted)
	if err != nil {
		voteResponse(w, http.StatusUnauthorized, models.VoteResponse{
			Error:   models.CodeInvalidSession,
			Message: "Invalid session",
		})
		return
	}

	res, err := h.svc.Admit(r.Context(), admission.Request{
		Identity:    token,
		Source:      source,
		CandidateID: candidateID,
		IPHash:      auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt),
		UserAgent:   r.UserAgent(),
	})
	if errors.Is(err, admission.ErrInvalidRequest) {
		voteResponse(w, http.StatusBadRequest, models.VoteResponse{
			Error:   models.CodeInvalidRequest,
			Message: "candidate_id and identity_token are required",
		})
		return
	}
	if err != nil {
		slog.Error("unexpected admission error", "error", err)
		voteResponse(w, http.StatusInternalServerError, models.VoteResponse{Error: models.CodeInternal, Message: "Internal server error"})
		return
	}

	switch res := res.(type) {
	case admission.Accepted:
		voteResponse(w, http.StatusOK, models.VoteResponse{
			Success:         true,
			CandidateID:     res.CandidateID,
			CandidateName:   res.CandidateName,
			ParticipantID:   res.CandidateID,
			ParticipantName: res.CandidateName,
			Message:         "Vote recorded for " + res.CandidateName,
		})

	case admission.AlreadyVoted:
		voteResponse(w, http.StatusConflict, models.VoteResponse{
			Error:           res.Code(),
			CandidateID:     res.CandidateID,
			CandidateName:   res.CandidateName,
			ParticipantID:   res.CandidateID,
			ParticipantName: res.CandidateName,
			Message:         "Already voted for " + res.CandidateName,
		})

	case admission.CandidateNotFound:
		voteResponse(w, http.StatusNotFound, models.VoteResponse{
			Error:   res.Code(),
			Message: "Candidate not found",
		})

	case admission.ElectionClosed:
		msg := "Voting has closed"
		if res.NotYetOpen(h.now()) {
			msg = "Voting has not opened yet"
		}
		voteResponse(w, http.StatusConflict, models.VoteResponse{
			Error:   res.Code(),
			Message: msg,
		})

	case admission.TransientFailure:
		w.Header().Set("Retry-After", retryAfterSeconds)
		voteResponse(w, http.StatusInternalServerError, models.VoteResponse{
			Error:   res.Code(),
			Message: "Failed to record vote, please retry",
		})
	}
}

func voteResponse(w http.ResponseWriter, status int, resp models.VoteResponse) {
	middleware.JSONResponse(w, status, resp)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
