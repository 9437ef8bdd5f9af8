// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/store"
)

func NewRouter(s *store.Store, svc handlers.Admitter, auditor *audit.Auditor, sessions *auth.SessionVerifier, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	identityHandler := handlers.NewIdentityHandler(sessions)
	voteHandler := handlers.NewVoteHandler(svc, sessions, cfg)
	electionHandler := handlers.NewElectionHandler(s, sessions)
	adminHandler := handlers.NewAdminHandler(s, auditor, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identity and vote admission
	mux.HandleFunc("POST /identity", middleware.WithLogging(identityHandler.Resolve))
	mux.HandleFunc("POST /vote", middleware.WithLogging(voteHandler.SubmitVote))

	// Election info and results (public)
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(electionHandler.GetResults))
	mux.HandleFunc("GET /elections/{id}/my-vote", middleware.WithLogging(electionHandler.GetMyVote))

	// Admin operations (require X-Admin-Key)
	mux.HandleFunc("GET /elections/{id}/admin/votes", middleware.WithLogging(adminHandler.ListVotes))
	mux.HandleFunc("GET /elections/{id}/admin/audit", middleware.WithLogging(adminHandler.Audit))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-vote API v1"))
	})

	return mux
}
