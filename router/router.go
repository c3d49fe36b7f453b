// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/middleware"
)

// NewRouter wires the HTTP API. gatherer may be nil, in which case
// /metrics is not served.
func NewRouter(engine *election.Engine, authn handlers.Authenticator, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(engine, authn)
	resultsHandler := handlers.NewResultsHandler(engine, authn)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Voter operations (identity required)
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(electionHandler.SubmitVote))
	mux.HandleFunc("GET /api/eligibility", middleware.WithLogging(electionHandler.Eligibility))
	mux.HandleFunc("GET /api/me", middleware.WithLogging(electionHandler.Me))

	// Public reads (results sealed until announcement)
	mux.HandleFunc("GET /api/voter-count", middleware.WithLogging(resultsHandler.GetVoterCount))
	mux.HandleFunc("GET /api/election-result", middleware.WithLogging(resultsHandler.GetResult))
	mux.HandleFunc("GET /api/election", middleware.WithLogging(resultsHandler.GetElection))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
