// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /vote", middleware.WithLogging(voteHandler.SubmitVote))

Logs method, path, status, remote and duration_ms once the handler returns.

# CORS Middleware

Enable cross-origin requests for the voting page:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

Listed origins are reflected with credentials allowed. A "*" entry allows any
origin without credentials; unlisted origins get no Allow-Origin header.
Allows methods GET, POST, OPTIONS with headers Content-Type, Authorization,
X-Identity-Token, X-Admin-Key. Retry-After is exposed to scripts.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (capped at MaxBodyBytes):

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

The result is hashed with auth.HashIP before it is stored on a vote record.
*/
package middleware
