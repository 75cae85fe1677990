// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the voting API.

	svc := router.NewServices(db, store, notifier)
	mux := router.NewRouter(svc, cfg)

# Endpoints

Public:

	GET  /health
	GET  /metrics
	POST /api/voters/register
	POST /api/voters/verify
	POST /api/voters/resend-code
	POST /api/voters/login
	POST /api/admins/login
	GET  /api/votes/elections
	GET  /api/candidates?type=&constituency=&includeRetired=
	GET  /api/votes/results?type=&constituency=

Voter (Bearer token with role voter):

	GET  /api/voters/me
	POST /api/votes
	GET  /api/votes/status

Admin (Bearer token with role admin):

	POST   /api/voters/{id}/verify
	POST   /api/voters/{id}/deactivate
	GET    /api/admins
	POST   /api/admins
	POST   /api/admins/change-password
	POST   /api/elections
	POST   /api/candidates
	PUT    /api/candidates/{id}
	DELETE /api/candidates/{id}
	POST   /api/candidates/{id}/retire
*/
package router
