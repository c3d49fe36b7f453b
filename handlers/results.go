// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

// ResultsHandler serves the public read endpoints. No identity is needed,
// but a valid credential's time override is still honoured.
type ResultsHandler struct {
	engine *election.Engine
	authn  Authenticator
}

func NewResultsHandler(engine *election.Engine, authn Authenticator) *ResultsHandler {
	return &ResultsHandler{engine: engine, authn: authn}
}

func (h *ResultsHandler) requestTime(r *http.Request) *http.Request {
	if h.authn == nil || r.Header.Get("Authorization") == "" {
		return r
	}
	id, err := h.authn.Authenticate(r)
	if err != nil {
		return r
	}
	return withIdentityTime(r, id)
}

// GetResult handles GET /api/election-result
// Results stay sealed until the announcement time
func (h *ResultsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	r = h.requestTime(r)

	result, err := h.engine.Result(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionResultResponse{
		Success: true,
		Result:  result,
	})
}

// GetVoterCount handles GET /api/voter-count
func (h *ResultsHandler) GetVoterCount(w http.ResponseWriter, r *http.Request) {
	r = h.requestTime(r)

	count, err := h.engine.VoterCount(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterCountResponse{
		Success: true,
		Count:   count.Count,
		AsOf:    count.AsOf,
	})
}

// GetElection handles GET /api/election
func (h *ResultsHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	r = h.requestTime(r)
	now := h.engine.Now(r.Context())
	period := h.engine.Period()

	resp := models.ElectionInfoResponse{
		Success:   true,
		Period:    period,
		Positions: h.engine.Offices(),
		Phase:     election.Classify(period, now),
	}
	if next, ok := election.NextBoundary(period, now); ok {
		resp.NextChange = &next
		resp.NextChangeHuman = humanize.RelTime(next, now, "ago", "from now")
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
