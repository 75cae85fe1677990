// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /api/votes/results", middleware.WithLogging(handler))

Logs method, path, client IP, status and duration_ms on completion.

# Bearer Authentication

Voter and admin routes require an Authorization: Bearer header carrying a
token from auth.IssueToken:

	mux.HandleFunc("POST /api/votes", middleware.RequireVoter(secret, h.CastVote))

The handler reads the caller with IdentityFrom(r.Context()).

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusConflict, "message")

ParseJSONBody decodes request bodies up to MaxBodyBytes.
*/
package middleware
