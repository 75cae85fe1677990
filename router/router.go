// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/cliparse"
	"github.com/dabekoe/chain-choice-voting/handlers"
	"github.com/dabekoe/chain-choice-voting/ledger"
	"github.com/dabekoe/chain-choice-voting/middleware"
	"github.com/dabekoe/chain-choice-voting/registry"
	"github.com/dabekoe/chain-choice-voting/tally"
)

// Services are the domain components behind the API. Build them once per
// process: the catalog serializes candidate edits in memory.
type Services struct {
	Registry *registry.Registry
	Catalog  *catalog.Catalog
	Ledger   *ledger.Ledger
	Tally    *tally.Engine
	Metrics  *prometheus.Registry
}

// NewServices wires the registry, catalog, ledger and tally engine. Ballots
// live in store; everything else lives in db.
func NewServices(db *sql.DB, store ledger.Store, notifier registry.Notifier) *Services {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	voters := registry.New(db, notifier)
	cat := catalog.New(db, store)
	l := ledger.New(store, voters, cat,
		ledger.WithMetrics(ledger.NewMetrics(reg)),
		ledger.WithLogger(slog.Default().With("component", "ledger")),
	)

	return &Services{
		Registry: voters,
		Catalog:  cat,
		Ledger:   l,
		Tally:    tally.New(cat, store, reg),
		Metrics:  reg,
	}
}

func NewRouter(svc *Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	voterHandler := handlers.NewVoterHandler(svc.Registry, cfg)
	adminHandler := handlers.NewAdminHandler(svc.Registry, cfg)
	electionHandler := handlers.NewElectionHandler(svc.Catalog)
	candidateHandler := handlers.NewCandidateHandler(svc.Catalog)
	votingHandler := handlers.NewVotingHandler(svc.Ledger)
	resultsHandler := handlers.NewResultsHandler(svc.Tally)

	voter := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireVoter(cfg.TokenSecret, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.TokenSecret, h))
	}
	public := middleware.WithLogging

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Metrics, promhttp.HandlerOpts{}))

	// Voter accounts
	mux.HandleFunc("POST /api/voters/register", public(voterHandler.Register))
	mux.HandleFunc("POST /api/voters/verify", public(voterHandler.Verify))
	mux.HandleFunc("POST /api/voters/resend-code", public(voterHandler.ResendCode))
	mux.HandleFunc("POST /api/voters/login", public(voterHandler.Login))
	mux.HandleFunc("GET /api/voters/me", voter(voterHandler.Me))
	mux.HandleFunc("POST /api/voters/{id}/verify", admin(voterHandler.MarkVerified))
	mux.HandleFunc("POST /api/voters/{id}/deactivate", admin(voterHandler.Deactivate))

	// Administrators
	mux.HandleFunc("POST /api/admins/login", public(adminHandler.Login))
	mux.HandleFunc("GET /api/admins", admin(adminHandler.List))
	mux.HandleFunc("POST /api/admins", admin(adminHandler.Create))
	mux.HandleFunc("POST /api/admins/change-password", admin(adminHandler.ChangePassword))

	// Election catalog
	mux.HandleFunc("GET /api/votes/elections", public(electionHandler.List))
	mux.HandleFunc("POST /api/elections", admin(electionHandler.Create))
	mux.HandleFunc("GET /api/candidates", public(candidateHandler.List))
	mux.HandleFunc("POST /api/candidates", admin(candidateHandler.Create))
	mux.HandleFunc("PUT /api/candidates/{id}", admin(candidateHandler.Update))
	mux.HandleFunc("DELETE /api/candidates/{id}", admin(candidateHandler.Delete))
	mux.HandleFunc("POST /api/candidates/{id}/retire", admin(candidateHandler.Retire))

	// Voting and results
	mux.HandleFunc("POST /api/votes", voter(votingHandler.CastVote))
	mux.HandleFunc("GET /api/votes/status", voter(votingHandler.Status))
	mux.HandleFunc("GET /api/votes/results", public(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("chain-choice voting API v1"))
	})

	return mux
}
